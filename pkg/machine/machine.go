// Package machine drives an 8080 core: it runs instructions against a memory
// and an I/O bus, meters cycles, and raises the periodic interrupts a board
// generates (the video sync interrupts of an arcade machine, for example).
package machine

import (
	"errors"
	"fmt"
	"io"

	"github.com/oisee/i8080/pkg/cpu"
)

// ErrCycleLimit is returned by Run when the cycle budget runs out first.
var ErrCycleLimit = errors.New("cycle limit reached")

// Config controls timing and tracing.
type Config struct {
	// CyclesPerInterrupt is the number of cycles run between two entries
	// of Vectors. Zero disables interrupt delivery in RunFrame.
	CyclesPerInterrupt int

	// Vectors are delivered in order, one per CyclesPerInterrupt, each
	// frame.
	Vectors []uint16

	// Trace, if set, receives one line per instruction before it executes.
	Trace io.Writer
}

// Stats counts work done since the machine was created.
type Stats struct {
	Instructions int64
	Cycles       int64
}

// Machine owns a CPU state and its bus. It is not safe for concurrent use.
type Machine struct {
	State *cpu.State
	IO    cpu.IO

	cfg   Config
	stats Stats
	carry int // cycles overrun in the previous budget
}

// New returns a machine with a power-on CPU attached to mem and bus.
func New(mem cpu.Memory, bus cpu.IO, cfg Config) *Machine {
	return &Machine{
		State: cpu.New(mem),
		IO:    bus,
		cfg:   cfg,
	}
}

// Stats returns the counters so far.
func (m *Machine) Stats() Stats { return m.stats }

// Step executes one instruction, tracing it if configured.
func (m *Machine) Step() (int, error) {
	if m.cfg.Trace != nil && !m.State.Halted {
		m.trace()
	}
	cycles, err := cpu.Step(m.State, m.IO)
	if err != nil {
		return 0, err
	}
	if cycles > 0 {
		m.stats.Instructions++
		m.stats.Cycles += int64(cycles)
	}
	return cycles, nil
}

// RunCycles runs instructions until budget cycles have elapsed. An
// instruction that crosses the end of the budget is completed, and the
// overrun is deducted from the next call, so long-run timing stays exact.
// A halted CPU idles out the rest of the budget.
func (m *Machine) RunCycles(budget int) (int, error) {
	target := budget - m.carry
	ran := 0
	for ran < target {
		if m.State.Halted {
			ran = target
			break
		}
		c, err := m.Step()
		if err != nil {
			m.carry = 0
			return ran, err
		}
		ran += c
	}
	m.carry = max(ran-target, 0)
	return ran, nil
}

// RunFrame runs one video frame: for each configured vector, one
// interrupt period of cycles followed by the interrupt itself.
func (m *Machine) RunFrame() error {
	if m.cfg.CyclesPerInterrupt <= 0 {
		return nil
	}
	for _, v := range m.cfg.Vectors {
		if _, err := m.RunCycles(m.cfg.CyclesPerInterrupt); err != nil {
			return err
		}
		cpu.Interrupt(m.State, v)
	}
	return nil
}

// Run executes until the CPU halts, stop reports true, or an error occurs.
// stop is checked after every instruction and may be nil. If maxCycles is
// positive and reached first, Run returns ErrCycleLimit.
func (m *Machine) Run(stop func() bool, maxCycles int64) (Stats, error) {
	start := m.stats
	for !m.State.Halted {
		if stop != nil && stop() {
			break
		}
		if maxCycles > 0 && m.stats.Cycles-start.Cycles >= maxCycles {
			return m.delta(start), fmt.Errorf("%w after %d cycles", ErrCycleLimit, maxCycles)
		}
		if _, err := m.Step(); err != nil {
			return m.delta(start), err
		}
	}
	return m.delta(start), nil
}

func (m *Machine) delta(start Stats) Stats {
	return Stats{
		Instructions: m.stats.Instructions - start.Instructions,
		Cycles:       m.stats.Cycles - start.Cycles,
	}
}
