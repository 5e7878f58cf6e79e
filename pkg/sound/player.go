package sound

import (
	"github.com/ebitengine/oto/v3"
)

// Player sends the mixer to the default audio device.
type Player struct {
	*Mixer
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the audio device and starts streaming bank's mixer.
func NewPlayer(bank *Bank) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{Mixer: NewMixer(bank), ctx: ctx}
	p.player = ctx.NewPlayer(p.Mixer)
	p.player.Play()
	return p, nil
}

// Close stops playback.
func (p *Player) Close() error {
	return p.player.Close()
}
