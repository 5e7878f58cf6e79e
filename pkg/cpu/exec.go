package cpu

import (
	"errors"
	"fmt"

	"github.com/oisee/i8080/pkg/inst"
)

var (
	// ErrInvalidOperand is returned when an instruction carries an operand
	// outside the closed set its opcode accepts (DAD PSW, STAX H, ...).
	// It means the decoder or the caller built a bad Instruction.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrNoIO is returned by IN and OUT when Exec is given a nil IO.
	ErrNoIO = errors.New("no I/O bus attached")
)

// conditionalPenalty is the extra cost of a taken conditional CALL or RET.
const conditionalPenalty = 6

// branch is the outcome of a control-transfer instruction.
type branch struct {
	next  uint16
	taken bool
}

// cost derives the cycle count of a control transfer from its outcome. A
// taken branch adds penalty to the base cost: conditional calls and returns
// pay conditionalPenalty, jumps pay nothing.
func (br branch) cost(in inst.Instruction, penalty int) int {
	if br.taken {
		return in.Cycles + penalty
	}
	return in.Cycles
}

// Exec executes one decoded instruction located at s.PC.
// It returns the address of the next instruction and the cycles taken; the
// caller stores next into s.PC. Memory is mutated through s.Mem and port
// I/O goes through io.
func Exec(s *State, in inst.Instruction, io IO) (next uint16, cycles int, err error) {
	if err := checkOperands(in); err != nil {
		return s.PC, 0, err
	}
	next = s.PC + uint16(in.Size)
	cycles = in.Cycles

	switch in.Op {
	// === Data transfer ===
	case inst.MOV:
		s.SetReg(in.Dst, s.Reg(in.Src))
	case inst.MVI:
		s.SetReg(in.Dst, uint8(in.Imm))
	case inst.LXI:
		s.SetPair(in.Pair, in.Imm)
	case inst.LDA:
		s.A = s.Mem.Read(in.Imm)
	case inst.STA:
		s.Mem.Write(in.Imm, s.A)
	case inst.LHLD:
		s.L = s.Mem.Read(in.Imm)
		s.H = s.Mem.Read(in.Imm + 1)
	case inst.SHLD:
		s.Mem.Write(in.Imm, s.L)
		s.Mem.Write(in.Imm+1, s.H)
	case inst.LDAX:
		s.A = s.Mem.Read(s.Pair(in.Pair))
	case inst.STAX:
		s.Mem.Write(s.Pair(in.Pair), s.A)
	case inst.XCHG:
		s.D, s.H = s.H, s.D
		s.E, s.L = s.L, s.E

	// === 8-bit arithmetic and logic ===
	case inst.ADD, inst.ADC, inst.SUB, inst.SBB,
		inst.ANA, inst.XRA, inst.ORA, inst.CMP:
		execALU(s, in.Op, s.Reg(in.Src))
	case inst.ADI, inst.ACI, inst.SUI, inst.SBI,
		inst.ANI, inst.XRI, inst.ORI, inst.CPI:
		execALU(s, in.Op, uint8(in.Imm))
	case inst.INR:
		s.SetReg(in.Dst, execInr(s, s.Reg(in.Dst)))
	case inst.DCR:
		s.SetReg(in.Dst, execDcr(s, s.Reg(in.Dst)))
	case inst.DAA:
		execDaa(s)

	// === 16-bit arithmetic ===
	case inst.INX:
		s.SetPair(in.Pair, s.Pair(in.Pair)+1)
	case inst.DCX:
		s.SetPair(in.Pair, s.Pair(in.Pair)-1)
	case inst.DAD:
		sum := uint32(s.HL()) + uint32(s.Pair(in.Pair))
		s.Carry = sum > 0xFFFF
		s.SetHL(uint16(sum))

	// === Rotates and flag operations ===
	case inst.RLC:
		s.Carry = s.A&0x80 != 0
		s.A = s.A<<1 | s.A>>7
	case inst.RRC:
		s.Carry = s.A&0x01 != 0
		s.A = s.A>>1 | s.A<<7
	case inst.RAL:
		out := s.A&0x80 != 0
		s.A = s.A<<1 | b2u(s.Carry)
		s.Carry = out
	case inst.RAR:
		out := s.A&0x01 != 0
		s.A = s.A>>1 | b2u(s.Carry)<<7
		s.Carry = out
	case inst.CMA:
		s.A = ^s.A
	case inst.CMC:
		s.Carry = !s.Carry
	case inst.STC:
		s.Carry = true

	// === Unconditional control transfer ===
	case inst.JMP:
		next = in.Imm
	case inst.CALL:
		s.push(next)
		next = in.Imm
	case inst.RET:
		next = s.pop()
	case inst.RST:
		s.push(next)
		next = RST(uint8(in.Imm))
	case inst.PCHL:
		next = s.HL()

	// === Conditional control transfer ===
	case inst.JNZ, inst.JZ, inst.JNC, inst.JC, inst.JPO, inst.JPE, inst.JP, inst.JM:
		c, _ := inst.Condition(in.Op)
		br := branch{next: next}
		if s.Test(c) {
			br = branch{next: in.Imm, taken: true}
		}
		next, cycles = br.next, br.cost(in, 0)
	case inst.CNZ, inst.CZ, inst.CNC, inst.CC, inst.CPO, inst.CPE, inst.CP, inst.CM:
		c, _ := inst.Condition(in.Op)
		br := branch{next: next}
		if s.Test(c) {
			s.push(next)
			br = branch{next: in.Imm, taken: true}
		}
		next, cycles = br.next, br.cost(in, conditionalPenalty)
	case inst.RNZ, inst.RZ, inst.RNC, inst.RC, inst.RPO, inst.RPE, inst.RP, inst.RM:
		c, _ := inst.Condition(in.Op)
		br := branch{next: next}
		if s.Test(c) {
			br = branch{next: s.pop(), taken: true}
		}
		next, cycles = br.next, br.cost(in, conditionalPenalty)

	// === Stack ===
	case inst.PUSH:
		s.push(s.Pair(in.Pair))
	case inst.POP:
		s.SetPair(in.Pair, s.pop())
	case inst.XTHL:
		lo, hi := s.Mem.Read(s.SP), s.Mem.Read(s.SP+1)
		s.Mem.Write(s.SP, s.L)
		s.Mem.Write(s.SP+1, s.H)
		s.L, s.H = lo, hi
	case inst.SPHL:
		s.SP = s.HL()

	// === I/O and machine control ===
	case inst.IN:
		if io == nil {
			return s.PC, 0, ErrNoIO
		}
		v, err := io.In(uint8(in.Imm))
		if err != nil {
			return s.PC, 0, fmt.Errorf("in %02Xh: %w", uint8(in.Imm), err)
		}
		s.A = v
	case inst.OUT:
		if io == nil {
			return s.PC, 0, ErrNoIO
		}
		if err := io.Out(s, uint8(in.Imm), s.A); err != nil {
			return s.PC, 0, fmt.Errorf("out %02Xh: %w", uint8(in.Imm), err)
		}
	case inst.EI:
		s.InterruptsEnabled = true
	case inst.DI:
		s.InterruptsEnabled = false
	case inst.HLT:
		s.Halted = true
	case inst.NOP:
		// nothing

	default:
		return s.PC, 0, fmt.Errorf("%w: opcode %d", inst.ErrUnimplementedOpcode, in.Op)
	}
	return next, cycles, nil
}

// checkOperands rejects operand values outside the set an opcode accepts.
func checkOperands(in inst.Instruction) error {
	bad := false
	switch in.Op {
	case inst.MOV:
		bad = in.Dst > inst.RegA || in.Src > inst.RegA ||
			(in.Dst == inst.RegM && in.Src == inst.RegM)
	case inst.MVI, inst.INR, inst.DCR:
		bad = in.Dst > inst.RegA
	case inst.ADD, inst.ADC, inst.SUB, inst.SBB, inst.ANA, inst.XRA, inst.ORA, inst.CMP:
		bad = in.Src > inst.RegA
	case inst.STAX, inst.LDAX:
		bad = in.Pair != inst.PairB && in.Pair != inst.PairD
	case inst.LXI, inst.INX, inst.DCX, inst.DAD:
		bad = in.Pair > inst.PairSP
	case inst.PUSH, inst.POP:
		bad = in.Pair == inst.PairSP || in.Pair > inst.PairPSW
	case inst.RST:
		bad = in.Imm > 7
	}
	if bad {
		return fmt.Errorf("%w: %s", ErrInvalidOperand, inst.Disassemble(in))
	}
	return nil
}

// --- ALU helpers ---

// execALU applies one of the eight accumulator operations. Immediate forms
// share the register forms' flag rules.
func execALU(s *State, op inst.OpCode, v uint8) {
	switch op {
	case inst.ADD, inst.ADI:
		s.A = execAdd(s, s.A, v, false)
	case inst.ADC, inst.ACI:
		s.A = execAdd(s, s.A, v, s.Carry)
	case inst.SUB, inst.SUI:
		s.A = execSub(s, s.A, v, false)
	case inst.SBB, inst.SBI:
		s.A = execSub(s, s.A, v, s.Carry)
	case inst.ANA, inst.ANI:
		execAnd(s, v)
	case inst.XRA, inst.XRI:
		s.A ^= v
		s.setZSP(s.A)
		s.Carry, s.AuxCarry = false, false
	case inst.ORA, inst.ORI:
		s.A |= v
		s.setZSP(s.A)
		s.Carry, s.AuxCarry = false, false
	case inst.CMP, inst.CPI:
		execSub(s, s.A, v, false)
	}
}

// execAdd returns a+b+carry and sets all five flags. Aux carry is the carry
// out of bit 3, recovered from the XOR of the operands and the sum.
func execAdd(s *State, a, b uint8, carry bool) uint8 {
	sum := uint16(a) + uint16(b) + uint16(b2u(carry))
	r := uint8(sum)
	s.Carry = sum > 0xFF
	s.AuxCarry = (a^b^r)&0x10 != 0
	s.setZSP(r)
	return r
}

// execSub returns a-b-borrow. The 8080 subtracts by adding the one's
// complement with the inverted borrow as carry in, so aux carry is set when
// the low nibble did not borrow, and carry is the inverted carry out.
func execSub(s *State, a, b uint8, borrow bool) uint8 {
	r := execAdd(s, a, ^b, !borrow)
	s.Carry = !s.Carry
	return r
}

// execAnd sets aux carry to the OR of bit 3 of both operands, an 8080 quirk.
func execAnd(s *State, v uint8) {
	s.AuxCarry = (s.A|v)&0x08 != 0
	s.A &= v
	s.setZSP(s.A)
	s.Carry = false
}

func execInr(s *State, v uint8) uint8 {
	v++
	s.setZSP(v)
	s.AuxCarry = v&0x0F == 0
	return v
}

func execDcr(s *State, v uint8) uint8 {
	v--
	s.setZSP(v)
	s.AuxCarry = v&0x0F != 0x0F
	return v
}

func execDaa(s *State) {
	var correction uint8
	carry := s.Carry
	lo, hi := s.A&0x0F, s.A>>4
	if s.AuxCarry || lo > 9 {
		correction = 0x06
	}
	if s.Carry || hi > 9 || (hi >= 9 && lo > 9) {
		correction |= 0x60
		carry = true
	}
	s.A = execAdd(s, s.A, correction, false)
	s.Carry = carry
}
