package invaders

import (
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/shifter"
)

// Button is a bitmask of cabinet controls.
type Button uint16

const (
	Coin Button = 1 << iota
	Start1
	Start2
	Fire1
	Left1
	Right1
	Fire2
	Left2
	Right2
	Tilt
)

// Sound identifiers, numbered like the usual sample files 0.wav to 8.wav.
const (
	SoundUFO = iota // loops while its latch bit is held
	SoundShot
	SoundPlayerDie
	SoundInvaderDie
	SoundFleet1
	SoundFleet2
	SoundFleet3
	SoundFleet4
	SoundUFOHit

	NumSounds
)

// Sound receives the edges of the sound latches on ports 3 and 5.
type Sound interface {
	Start(id int)
	Stop(id int)
}

// latchSounds maps each bit of ports 3 and 5 to a sound. -1 marks bits that
// are not sounds (amplifier enable, cocktail flip, extra life).
var latchSounds = map[uint8][8]int{
	3: {SoundUFO, SoundShot, SoundPlayerDie, SoundInvaderDie, -1, -1, -1, -1},
	5: {SoundFleet1, SoundFleet2, SoundFleet3, SoundFleet4, SoundUFOHit, -1, -1, -1},
}

// DIP holds the dip switch settings read on port 2.
type DIP struct {
	Lives        int  // 3 to 6
	BonusAt1000  bool // extra ship at 1000 points instead of 1500
	HideCoinInfo bool
}

// DefaultDIP is three lives, bonus at 1500, coin info shown.
var DefaultDIP = DIP{Lives: 3}

func (d DIP) bits() uint8 {
	var v uint8
	if d.Lives > 3 {
		v = uint8(min(d.Lives, 6) - 3)
	}
	if d.BonusAt1000 {
		v |= 0x08
	}
	if d.HideCoinInfo {
		v |= 0x80
	}
	return v
}

// Board is the cabinet's I/O: inputs, the shift register, sound latches
// and the watchdog. It implements cpu.IO.
type Board struct {
	DIP   DIP
	Sound Sound

	Shift    shifter.Shifter
	buttons  Button
	latch    [8]uint8 // last value written per port
	Watchdog int      // number of watchdog resets seen
}

// NewBoard returns a board with default dip switches. snd may be nil.
func NewBoard(snd Sound) *Board {
	return &Board{DIP: DefaultDIP, Sound: snd}
}

// Press and Release change the state of one or more controls.
func (b *Board) Press(btn Button)   { b.buttons |= btn }
func (b *Board) Release(btn Button) { b.buttons &^= btn }

func (b *Board) held(btn Button, bit uint8) uint8 {
	if b.buttons&btn != 0 {
		return bit
	}
	return 0
}

func (b *Board) In(port uint8) (uint8, error) {
	switch port {
	case 0:
		return 0x0E, nil
	case 1:
		return 0x08 |
			b.held(Coin, 0x01) |
			b.held(Start2, 0x02) |
			b.held(Start1, 0x04) |
			b.held(Fire1, 0x10) |
			b.held(Left1, 0x20) |
			b.held(Right1, 0x40), nil
	case 2:
		return b.DIP.bits() |
			b.held(Tilt, 0x04) |
			b.held(Fire2, 0x10) |
			b.held(Left2, 0x20) |
			b.held(Right2, 0x40), nil
	case 3:
		return b.Shift.Result(), nil
	}
	return 0, nil
}

func (b *Board) Out(_ *cpu.State, port uint8, v uint8) error {
	switch port {
	case 2:
		b.Shift.SetOffset(v)
	case 3, 5:
		b.latchSound(port, v)
	case 4:
		b.Shift.Push(v)
	case 6:
		b.Watchdog++
	}
	return nil
}

// latchSound reports rising edges as Start and falling edges as Stop.
func (b *Board) latchSound(port, v uint8) {
	prev := b.latch[port]
	b.latch[port] = v
	if b.Sound == nil {
		return
	}
	ids := latchSounds[port]
	for bit := 0; bit < 8; bit++ {
		id := ids[bit]
		if id < 0 {
			continue
		}
		mask := uint8(1) << bit
		switch {
		case v&mask != 0 && prev&mask == 0:
			b.Sound.Start(id)
		case v&mask == 0 && prev&mask != 0:
			b.Sound.Stop(id)
		}
	}
}

// Latch returns the last value written to a sound port.
func (b *Board) Latch(port uint8) uint8 { return b.latch[port&7] }
