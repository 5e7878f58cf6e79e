// Package memory provides address spaces for the 8080 core.
package memory

import (
	"errors"
	"fmt"
	"os"
)

// ErrImageTooLarge is returned when an image would extend past FFFFh.
var ErrImageTooLarge = errors.New("image does not fit in 64K")

// Loader places an initial image into an address space.
type Loader interface {
	Load(addr uint16, image []byte) error
}

// Flat is 64 KiB of uniform RAM with no ROM or mirrored regions. It backs
// the CP/M harness and the exec command.
type Flat struct {
	bytes [0x10000]uint8
}

// NewFlat returns zeroed RAM.
func NewFlat() *Flat {
	return &Flat{}
}

func (m *Flat) Read(addr uint16) uint8     { return m.bytes[addr] }
func (m *Flat) Write(addr uint16, v uint8) { m.bytes[addr] = v }

// Window returns the bytes from addr to FFFFh.
func (m *Flat) Window(addr uint16) []uint8 { return m.bytes[addr:] }

// Bytes exposes the whole address space, for snapshots and dumps.
func (m *Flat) Bytes() []uint8 { return m.bytes[:] }

// Load copies image to addr.
func (m *Flat) Load(addr uint16, image []byte) error {
	if int(addr)+len(image) > len(m.bytes) {
		return fmt.Errorf("%w: %d bytes at %04Xh", ErrImageTooLarge, len(image), addr)
	}
	copy(m.bytes[addr:], image)
	return nil
}

// LoadFile reads a file and loads it at addr.
func LoadFile(l Loader, path string, addr uint16) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := l.Load(addr, image); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
