package cpu

import "github.com/oisee/i8080/pkg/inst"

// State is the complete 8080 processor state. The 16-bit pair views BC, DE
// and HL are computed from the byte registers on demand, so the halves and
// the pair can never disagree.
//
// A State is owned by a single driver loop and passed by pointer into every
// operation; nothing in this package keeps a reference to it.
type State struct {
	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	Flags

	InterruptsEnabled bool
	Halted            bool

	// Mem is the address space the CPU fetches from and executes against.
	Mem Memory
}

// New returns a power-on State: registers zeroed, interrupts disabled.
func New(mem Memory) *State {
	return &State{Mem: mem}
}

// Reset returns the processor to its power-on state, keeping Mem.
func (s *State) Reset() {
	*s = State{Mem: s.Mem}
}

func (s *State) BC() uint16 { return uint16(s.B)<<8 | uint16(s.C) }
func (s *State) DE() uint16 { return uint16(s.D)<<8 | uint16(s.E) }
func (s *State) HL() uint16 { return uint16(s.H)<<8 | uint16(s.L) }

func (s *State) SetBC(v uint16) { s.B, s.C = uint8(v>>8), uint8(v) }
func (s *State) SetDE(v uint16) { s.D, s.E = uint8(v>>8), uint8(v) }
func (s *State) SetHL(v uint16) { s.H, s.L = uint8(v>>8), uint8(v) }

// PSW returns the accumulator in the high byte and the packed flags in the
// low byte, as PUSH PSW stores them.
func (s *State) PSW() uint16 {
	return uint16(s.A)<<8 | uint16(s.Flags.Pack())
}

// SetPSW is the inverse of PSW.
func (s *State) SetPSW(v uint16) {
	s.A = uint8(v >> 8)
	s.Flags.Unpack(uint8(v))
}

// Reg reads an 8-bit operand. RegM reads memory at HL.
func (s *State) Reg(r inst.Reg) uint8 {
	switch r {
	case inst.RegA:
		return s.A
	case inst.RegB:
		return s.B
	case inst.RegC:
		return s.C
	case inst.RegD:
		return s.D
	case inst.RegE:
		return s.E
	case inst.RegH:
		return s.H
	case inst.RegL:
		return s.L
	case inst.RegM:
		return s.Mem.Read(s.HL())
	}
	return 0
}

// SetReg writes an 8-bit operand. RegM writes memory at HL.
func (s *State) SetReg(r inst.Reg, v uint8) {
	switch r {
	case inst.RegA:
		s.A = v
	case inst.RegB:
		s.B = v
	case inst.RegC:
		s.C = v
	case inst.RegD:
		s.D = v
	case inst.RegE:
		s.E = v
	case inst.RegH:
		s.H = v
	case inst.RegL:
		s.L = v
	case inst.RegM:
		s.Mem.Write(s.HL(), v)
	}
}

// Pair reads a register pair. PairPSW reads the accumulator and flags.
func (s *State) Pair(p inst.Pair) uint16 {
	switch p {
	case inst.PairB:
		return s.BC()
	case inst.PairD:
		return s.DE()
	case inst.PairH:
		return s.HL()
	case inst.PairSP:
		return s.SP
	case inst.PairPSW:
		return s.PSW()
	}
	return 0
}

// SetPair writes a register pair.
func (s *State) SetPair(p inst.Pair, v uint16) {
	switch p {
	case inst.PairB:
		s.SetBC(v)
	case inst.PairD:
		s.SetDE(v)
	case inst.PairH:
		s.SetHL(v)
	case inst.PairSP:
		s.SP = v
	case inst.PairPSW:
		s.SetPSW(v)
	}
}

// push stores v below SP, high byte first, so the low byte ends up at the
// lower address.
func (s *State) push(v uint16) {
	s.SP--
	s.Mem.Write(s.SP, uint8(v>>8))
	s.SP--
	s.Mem.Write(s.SP, uint8(v))
}

func (s *State) pop() uint16 {
	lo := s.Mem.Read(s.SP)
	s.SP++
	hi := s.Mem.Read(s.SP)
	s.SP++
	return uint16(hi)<<8 | uint16(lo)
}
