// Package sound plays the Space Invaders sound effects from sample files.
//
// The board has no sound chip the CPU can program: each effect is an
// analog circuit triggered by a latch bit. Here every effect is a
// recorded sample, numbered 0 to 8 as in the widely circulated set
// (0.wav is the UFO loop, 1.wav the shot, and so on).
package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/oisee/i8080/pkg/invaders"
)

// SampleRate is the output rate; samples are resampled to it on load.
const SampleRate = 44100

// Bank holds one mono sample per sound id. Missing files leave a nil
// entry, which plays as silence.
type Bank [invaders.NumSounds][]float32

// LoadBank decodes N.wav (or N.mp3) for every sound id from dir. It fails
// only if no sample at all could be loaded.
func LoadBank(dir string) (*Bank, error) {
	var b Bank
	loaded := 0
	for id := range b {
		data, err := loadSample(dir, id)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		b[id] = data
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no samples in %s", dir)
	}
	return &b, nil
}

func loadSample(dir string, id int) ([]float32, error) {
	path := filepath.Join(dir, fmt.Sprintf("%d.wav", id))
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		data, err := DecodeWAV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return data, nil
	}
	path = filepath.Join(dir, fmt.Sprintf("%d.mp3", id))
	f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := DecodeMP3(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// DecodeWAV reads a PCM wav file into mono float32 at SampleRate. Multiple
// channels are averaged.
func DecodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("wav: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return resample(mono(buf), int(dec.SampleRate), SampleRate), nil
}

// mono mixes an integer buffer down to one channel in [-1, 1].
func mono(buf *audio.IntBuffer) []float32 {
	chans := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		chans = buf.Format.NumChannels
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float32(int(1) << (depth - 1))
	out := make([]float32, len(buf.Data)/chans)
	for i := range out {
		var sum int
		for c := 0; c < chans; c++ {
			sum += buf.Data[i*chans+c]
		}
		out[i] = float32(sum) / float32(chans) / scale
	}
	// 8-bit wav is unsigned
	if depth == 8 {
		for i := range out {
			out[i] = out[i] - 1
		}
	}
	return out
}

// DecodeMP3 reads an mp3 stream into mono float32 at SampleRate. The
// decoder always yields 16-bit little-endian stereo.
func DecodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		out[i] = (float32(left) + float32(right)) / 2 / 32768
	}
	return resample(out, dec.SampleRate(), SampleRate), nil
}

// resample converts between rates by linear interpolation.
func resample(in []float32, from, to int) []float32 {
	if from <= 0 || from == to || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		frac := float32(pos - float64(j))
		a := in[j]
		b := a
		if j+1 < len(in) {
			b = in[j+1]
		}
		out[i] = a + (b-a)*frac
	}
	return out
}
