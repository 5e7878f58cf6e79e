package machine

import (
	"fmt"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/inst"
)

// trace writes the register file and the instruction about to execute.
func (m *Machine) trace() {
	s := m.State
	text := "??"
	if in, err := cpu.Fetch(s.Mem, s.PC); err == nil {
		text = inst.Disassemble(in)
	}
	fmt.Fprintf(m.cfg.Trace, "PC: %04X, AF: %04X, BC: %04X, DE: %04X, HL: %04X, SP: %04X, CYC: %d\t%s\n",
		s.PC, s.PSW(), s.BC(), s.DE(), s.HL(), s.SP, m.stats.Cycles, text)
}
