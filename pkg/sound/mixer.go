package sound

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/oisee/i8080/pkg/invaders"
)

type voice struct {
	id   int
	pos  int
	loop bool
}

// Mixer sums the active voices into a mono float32 little-endian stream.
// It implements invaders.Sound on the emulation side and io.Reader on the
// audio side; the two may run on different goroutines.
type Mixer struct {
	Volume float32

	mu     sync.Mutex
	bank   *Bank
	voices []voice
}

// NewMixer returns a mixer over bank at full volume.
func NewMixer(bank *Bank) *Mixer {
	return &Mixer{bank: bank, Volume: 1}
}

// Start triggers a sound. The UFO loops until stopped; other sounds play
// once, restarting if already playing.
func (m *Mixer) Start(id int) {
	if id < 0 || id >= len(m.bank) || len(m.bank[id]) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if m.voices[i].id == id {
			if !m.voices[i].loop {
				m.voices[i].pos = 0
			}
			return
		}
	}
	m.voices = append(m.voices, voice{id: id, loop: id == invaders.SoundUFO})
}

// Stop ends a looping sound. One-shot sounds always play to the end.
func (m *Mixer) Stop(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < len(m.voices); i++ {
		if m.voices[i].id == id && m.voices[i].loop {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			i--
		}
	}
}

// Read fills p with whole float32 samples. It never blocks and never
// returns an error; with nothing playing it produces silence.
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) / 4
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		var sum float32
		for j := 0; j < len(m.voices); j++ {
			v := &m.voices[j]
			data := m.bank[v.id]
			if v.pos >= len(data) {
				if !v.loop {
					m.voices = append(m.voices[:j], m.voices[j+1:]...)
					j--
					continue
				}
				v.pos = 0
			}
			sum += data[v.pos]
			v.pos++
		}
		sum *= m.Volume
		sum = max(-1, min(1, sum))
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sum))
	}
	return n * 4, nil
}
