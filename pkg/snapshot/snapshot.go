// Package snapshot saves and restores machine state (save states) with gob.
package snapshot

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oisee/i8080/pkg/cpu"
)

// ErrMismatch is returned when a snapshot does not fit the machine it is
// restored into.
var ErrMismatch = errors.New("snapshot does not match machine")

// Snapshot holds the CPU registers, the writable memory and any peripheral
// latches a machine needs to resume.
type Snapshot struct {
	Machine string // "invaders", "cpm", ...

	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	Flags               uint8 // packed as PUSH PSW stores them
	InterruptsEnabled   bool
	Halted              bool

	RAMBase uint16
	RAM     []byte

	// Peripheral state, keyed by name (e.g. "shift", "shift.offset").
	Latches map[string]uint16
}

// Capture copies the CPU state and ram, which is mapped at base.
func Capture(machine string, s *cpu.State, base uint16, ram []byte) *Snapshot {
	return &Snapshot{
		Machine:           machine,
		A:                 s.A,
		B:                 s.B,
		C:                 s.C,
		D:                 s.D,
		E:                 s.E,
		H:                 s.H,
		L:                 s.L,
		SP:                s.SP,
		PC:                s.PC,
		Flags:             s.Flags.Pack(),
		InterruptsEnabled: s.InterruptsEnabled,
		Halted:            s.Halted,
		RAMBase:           base,
		RAM:               append([]byte(nil), ram...),
		Latches:           make(map[string]uint16),
	}
}

// Restore writes the snapshot back into s and ram. The machine name, RAM
// base and RAM size must match.
func (sn *Snapshot) Restore(machine string, s *cpu.State, base uint16, ram []byte) error {
	if sn.Machine != machine || sn.RAMBase != base || len(sn.RAM) != len(ram) {
		return fmt.Errorf("%w: have %s %d bytes at %04Xh, want %s %d bytes at %04Xh",
			ErrMismatch, sn.Machine, len(sn.RAM), sn.RAMBase, machine, len(ram), base)
	}
	s.A, s.B, s.C, s.D, s.E, s.H, s.L = sn.A, sn.B, sn.C, sn.D, sn.E, sn.H, sn.L
	s.SP, s.PC = sn.SP, sn.PC
	s.Flags.Unpack(sn.Flags)
	s.InterruptsEnabled = sn.InterruptsEnabled
	s.Halted = sn.Halted
	copy(ram, sn.RAM)
	return nil
}

// Encode writes sn to w.
func Encode(w io.Writer, sn *Snapshot) error {
	return gob.NewEncoder(w).Encode(sn)
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var sn Snapshot
	if err := gob.NewDecoder(r).Decode(&sn); err != nil {
		return nil, err
	}
	return &sn, nil
}

// Save writes sn to a file.
func Save(path string, sn *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, sn); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a snapshot from a file.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sn, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sn, nil
}
