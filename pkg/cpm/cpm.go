// Package cpm runs CP/M .COM programs, such as the classic 8080 CPU
// diagnostics, on a bare 64K machine. Only the console BDOS calls those
// programs use are provided.
//
// The program is loaded at 0100h. Address 0000h (warm boot) is patched
// with OUT 0, which ends the session, and the BDOS entry at 0005h with
// OUT 1 : RET, so every BDOS call reaches the harness as a port write.
package cpm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/machine"
	"github.com/oisee/i8080/pkg/memory"
	"github.com/oisee/i8080/pkg/snapshot"
)

// Well-known addresses and the ports the patches use.
const (
	TPA       = 0x0100
	BDOSEntry = 0x0005

	PortWarmBoot uint8 = 0
	PortBDOS     uint8 = 1
)

// ErrUnsupportedCall is returned for BDOS functions the harness does not
// provide.
var ErrUnsupportedCall = errors.New("unsupported BDOS call")

// Syscall is one BDOS function.
type Syscall struct {
	Desc    string
	Handler func(*Session, *cpu.State) error
}

// Config selects the console streams.
type Config struct {
	Console io.Writer // copy of console output; may be nil
	Input   io.Reader // console input for C_READ; nil reads as end of file
	Trace   io.Writer // per-instruction trace; may be nil
}

// Session is one program run.
type Session struct {
	*machine.Machine
	Mem *memory.Flat

	// Syscalls maps the BDOS function number in C to its handler.
	Syscalls map[uint8]Syscall

	output  bytes.Buffer
	console io.Writer
	input   *bufio.Reader
	done    bool
}

// Result summarises a finished run.
type Result struct {
	Output       string
	Instructions int64
	Cycles       int64
	Halted       bool // ended by HLT rather than warm boot
}

// New loads program at 0100h and patches the warm boot and BDOS entries.
func New(program []byte, cfg Config) (*Session, error) {
	mem := memory.NewFlat()
	if err := mem.Load(TPA, program); err != nil {
		return nil, err
	}
	patch := []struct {
		addr uint16
		code []byte
	}{
		{0x0000, []byte{0xD3, PortWarmBoot}},      // OUT 0
		{BDOSEntry, []byte{0xD3, PortBDOS, 0xC9}}, // OUT 1 : RET
	}
	for _, p := range patch {
		if err := mem.Load(p.addr, p.code); err != nil {
			return nil, err
		}
	}

	s := &Session{
		Mem:      mem,
		Syscalls: defaultSyscalls(),
	}
	s.console = &s.output
	if cfg.Console != nil {
		s.console = io.MultiWriter(&s.output, cfg.Console)
	}
	if cfg.Input != nil {
		s.input = bufio.NewReader(cfg.Input)
	}
	s.Machine = machine.New(mem, s, machine.Config{Trace: cfg.Trace})
	s.State.PC = TPA
	return s, nil
}

// Load reads a .COM file and returns a session for it.
func Load(path string, cfg Config) (*Session, error) {
	s, err := New(nil, cfg)
	if err != nil {
		return nil, err
	}
	if err := memory.LoadFile(s.Mem, path, TPA); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes until warm boot, HLT, an error, or maxCycles (if positive).
func (s *Session) Run(maxCycles int64) (Result, error) {
	st, err := s.Machine.Run(func() bool { return s.done }, maxCycles)
	return Result{
		Output:       s.output.String(),
		Instructions: st.Instructions,
		Cycles:       st.Cycles,
		Halted:       s.State.Halted,
	}, err
}

// Output returns the console output so far.
func (s *Session) Output() string { return s.output.String() }

// Snapshot captures the whole 64K and the CPU.
func (s *Session) Snapshot() *snapshot.Snapshot {
	return snapshot.Capture("cpm", s.State, 0, s.Mem.Bytes())
}

// In answers IN instructions; the diagnostics never read ports.
func (s *Session) In(port uint8) (uint8, error) {
	return 0, nil
}

// Out dispatches the warm boot and BDOS patches.
func (s *Session) Out(st *cpu.State, port uint8, v uint8) error {
	switch port {
	case PortWarmBoot:
		s.done = true
	case PortBDOS:
		call, ok := s.Syscalls[st.C]
		if !ok {
			return fmt.Errorf("%w: C=%d", ErrUnsupportedCall, st.C)
		}
		if err := call.Handler(s, st); err != nil {
			return fmt.Errorf("BDOS %s: %w", call.Desc, err)
		}
	}
	return nil
}
