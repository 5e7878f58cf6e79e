// Package invaders implements the Space Invaders arcade board around the
// 8080 core: its memory map, input ports, shift register, sound latches and
// interrupt timing.
package invaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Memory map.
const (
	ROMSize  = 0x2000
	RAMBase  = 0x2000
	RAMSize  = 0x2000
	VRAMBase = 0x2400
	VRAMSize = 0x1C00 // 224 columns of 32 bytes
)

// ErrMissingROM is returned when no usable ROM set is found.
var ErrMissingROM = errors.New("missing ROM")

// romParts lists the four 2K chips of the usual MAME set, lowest address
// first.
var romParts = []string{"invaders.h", "invaders.g", "invaders.f", "invaders.e"}

// Memory is 8K of ROM followed by 8K of RAM. Addresses from 4000h up mirror
// the RAM; writes to ROM are ignored.
type Memory struct {
	rom [ROMSize]uint8
	ram [RAMSize]uint8
}

func (m *Memory) Read(addr uint16) uint8 {
	if addr < RAMBase {
		return m.rom[addr]
	}
	return m.ram[addr&(RAMSize-1)]
}

func (m *Memory) Write(addr uint16, v uint8) {
	if addr < RAMBase {
		return
	}
	m.ram[addr&(RAMSize-1)] = v
}

func (m *Memory) Window(addr uint16) []uint8 {
	if addr < RAMBase {
		return m.rom[addr:]
	}
	return m.ram[addr&(RAMSize-1):]
}

// Load copies image to addr, writing through to ROM. The image must fit
// below the RAM mirror at 4000h.
func (m *Memory) Load(addr uint16, image []byte) error {
	if int(addr)+len(image) > ROMSize+RAMSize {
		return fmt.Errorf("image of %d bytes at %04Xh overruns 4000h", len(image), addr)
	}
	for i, b := range image {
		a := int(addr) + i
		if a < ROMSize {
			m.rom[a] = b
		} else {
			m.ram[a-ROMSize] = b
		}
	}
	return nil
}

// RAM returns the writable half, 2000h-3FFFh.
func (m *Memory) RAM() []uint8 { return m.ram[:] }

// VRAM returns the 1-bit-per-pixel frame buffer at 2400h.
func (m *Memory) VRAM() []uint8 { return m.ram[VRAMBase-RAMBase:] }

// LoadROM reads the game ROM from dir: either a single 8K invaders.rom or
// the four 2K parts invaders.h, .g, .f and .e.
func LoadROM(m *Memory, dir string) error {
	if image, err := os.ReadFile(filepath.Join(dir, "invaders.rom")); err == nil {
		if len(image) != ROMSize {
			return fmt.Errorf("%w: invaders.rom is %d bytes, want %d", ErrMissingROM, len(image), ROMSize)
		}
		return m.Load(0, image)
	}
	for i, name := range romParts {
		image, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMissingROM, err)
		}
		if len(image) != 0x800 {
			return fmt.Errorf("%w: %s is %d bytes, want 2048", ErrMissingROM, name, len(image))
		}
		if err := m.Load(uint16(i*0x800), image); err != nil {
			return err
		}
	}
	return nil
}
