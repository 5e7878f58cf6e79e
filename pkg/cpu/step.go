package cpu

import (
	"fmt"

	"github.com/oisee/i8080/pkg/inst"
)

// Fetch decodes the instruction at pc. When the memory window at pc is
// shorter than three bytes (the top of a region or of the address space),
// the operand bytes are read one at a time with 16-bit wrap-around.
func Fetch(mem Memory, pc uint16) (inst.Instruction, error) {
	w := mem.Window(pc)
	if len(w) >= 3 {
		return inst.Decode(w)
	}
	buf := [3]uint8{mem.Read(pc), mem.Read(pc + 1), mem.Read(pc + 2)}
	return inst.Decode(buf[:])
}

// Step fetches, decodes and executes one instruction, advancing s.PC.
// A halted CPU does nothing and reports zero cycles; only Interrupt wakes it.
func Step(s *State, io IO) (int, error) {
	if s.Halted {
		return 0, nil
	}
	in, err := Fetch(s.Mem, s.PC)
	if err != nil {
		return 0, fmt.Errorf("cpu: pc %04Xh: %w", s.PC, err)
	}
	next, cycles, err := Exec(s, in, io)
	if err != nil {
		return 0, fmt.Errorf("cpu: pc %04Xh: %s: %w", s.PC, inst.Disassemble(in), err)
	}
	s.PC = next
	return cycles, nil
}
