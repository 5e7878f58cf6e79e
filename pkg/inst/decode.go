package inst

import (
	"errors"
	"fmt"
)

var (
	// ErrUnimplementedOpcode is returned by the executor for an OpCode it
	// has no case for. Every opcode byte decodes, so Decode never returns it.
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")

	// ErrTruncated is returned when the byte window ends before the
	// instruction does.
	ErrTruncated = errors.New("truncated instruction")

	// ErrNoEncoding is returned by Encode for operand combinations the 8080
	// cannot express (e.g. MOV M, M or STAX H).
	ErrNoEncoding = errors.New("no encoding")
)

// table holds the decoded template for every opcode byte. Immediate operands
// are filled in by Decode; RST templates already carry their restart number.
var table [256]Instruction

type encKey struct {
	op   OpCode
	dst  Reg
	src  Reg
	pair Pair
	rst  uint16
}

// encoding is the reverse of table for documented opcodes.
var encoding = make(map[encKey]uint8, 256)

// aluRegOps and aluImmOps are indexed by the 3-bit operation field of
// 10ooosss and 11ooo110.
var (
	aluRegOps = [8]OpCode{ADD, ADC, SUB, SBB, ANA, XRA, ORA, CMP}
	aluImmOps = [8]OpCode{ADI, ACI, SUI, SBI, ANI, XRI, ORI, CPI}
)

// Decode decodes the instruction whose opcode is window[0]. The window must
// hold the full instruction (up to 3 bytes); bytes past it are ignored.
func Decode(window []byte) (Instruction, error) {
	if len(window) == 0 {
		return Instruction{}, ErrTruncated
	}
	in := table[window[0]]
	if len(window) < in.Size {
		return Instruction{}, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrTruncated, Catalog[in.Op].Mnemonic, in.Size, len(window))
	}
	switch in.Size {
	case 2:
		in.Imm = uint16(window[1])
	case 3:
		in.Imm = uint16(window[1]) | uint16(window[2])<<8
	}
	return in, nil
}

// Encode returns the machine code for an instruction. Operand fields that
// the opcode does not use are ignored.
func Encode(in Instruction) ([]byte, error) {
	if in.Op >= OpCodeCount {
		return nil, fmt.Errorf("%w: opcode %d", ErrNoEncoding, in.Op)
	}
	key := encKey{op: in.Op}
	switch Catalog[in.Op].Format {
	case FmtMov:
		key.dst, key.src = in.Dst, in.Src
	case FmtDst, FmtDstImm8:
		key.dst = in.Dst
	case FmtSrc:
		key.src = in.Src
	case FmtPair, FmtPairImm16:
		key.pair = in.Pair
	case FmtRst:
		key.rst = in.Imm
	}
	b, ok := encoding[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEncoding, Disassemble(in))
	}
	switch table[b].Size {
	case 2:
		return []byte{b, uint8(in.Imm)}, nil
	case 3:
		return []byte{b, uint8(in.Imm), uint8(in.Imm >> 8)}, nil
	}
	return []byte{b}, nil
}

func init() {
	for i := 0; i < 256; i++ {
		b := uint8(i)
		in := template(b)
		table[b] = in

		key := encKey{op: in.Op, dst: in.Dst, src: in.Src, pair: in.Pair}
		if in.Op == RST {
			key.rst = in.Imm
		}
		// First occurrence wins, so NOP encodes as 00h rather than an alias.
		if _, dup := encoding[key]; !dup {
			encoding[key] = b
		}
	}
}

// template builds the instruction template for one opcode byte from the
// 8080 encoding rules. Bit fields: ddd/sss are registers (bits 5-3 / 2-0),
// rp is a register pair (bits 5-4), ccc is a condition (bits 5-3).
func template(b uint8) Instruction {
	ddd := Reg((b >> 3) & 7)
	sss := Reg(b & 7)
	rp := Pair((b >> 4) & 3)
	ccc := (b >> 3) & 7

	one := func(op OpCode, cycles int) Instruction {
		return Instruction{Op: op, Size: 1, Cycles: cycles}
	}

	switch {
	// === 01dddsss: MOV and HLT ===
	case b == 0x76:
		return one(HLT, 7)
	case b&0xC0 == 0x40:
		cycles := 5
		if ddd == RegM || sss == RegM {
			cycles = 7
		}
		return Instruction{Op: MOV, Dst: ddd, Src: sss, Size: 1, Cycles: cycles}

	// === 10ooosss: ALU with register or memory ===
	case b&0xC0 == 0x80:
		cycles := 4
		if sss == RegM {
			cycles = 7
		}
		return Instruction{Op: aluRegOps[ccc], Src: sss, Size: 1, Cycles: cycles}
	}

	if b < 0x40 {
		switch {
		case b&0xC7 == 0x00:
			// 00h plus the undocumented aliases 08h..38h
			return one(NOP, 4)
		case b&0xC7 == 0x04:
			return Instruction{Op: INR, Dst: ddd, Size: 1, Cycles: cyclesM(ddd, 5, 10)}
		case b&0xC7 == 0x05:
			return Instruction{Op: DCR, Dst: ddd, Size: 1, Cycles: cyclesM(ddd, 5, 10)}
		case b&0xC7 == 0x06:
			return Instruction{Op: MVI, Dst: ddd, Size: 2, Cycles: cyclesM(ddd, 7, 10)}
		case b&0xCF == 0x01:
			return Instruction{Op: LXI, Pair: rp, Size: 3, Cycles: 10}
		case b&0xCF == 0x03:
			return Instruction{Op: INX, Pair: rp, Size: 1, Cycles: 5}
		case b&0xCF == 0x0B:
			return Instruction{Op: DCX, Pair: rp, Size: 1, Cycles: 5}
		case b&0xCF == 0x09:
			return Instruction{Op: DAD, Pair: rp, Size: 1, Cycles: 10}
		}
		switch b {
		case 0x02, 0x12:
			return Instruction{Op: STAX, Pair: rp, Size: 1, Cycles: 7}
		case 0x0A, 0x1A:
			return Instruction{Op: LDAX, Pair: rp, Size: 1, Cycles: 7}
		case 0x22:
			return Instruction{Op: SHLD, Size: 3, Cycles: 16}
		case 0x2A:
			return Instruction{Op: LHLD, Size: 3, Cycles: 16}
		case 0x32:
			return Instruction{Op: STA, Size: 3, Cycles: 13}
		case 0x3A:
			return Instruction{Op: LDA, Size: 3, Cycles: 13}
		case 0x07:
			return one(RLC, 4)
		case 0x0F:
			return one(RRC, 4)
		case 0x17:
			return one(RAL, 4)
		case 0x1F:
			return one(RAR, 4)
		case 0x27:
			return one(DAA, 4)
		case 0x2F:
			return one(CMA, 4)
		case 0x37:
			return one(STC, 4)
		case 0x3F:
			return one(CMC, 4)
		}
	}

	// === 11xxxxxx: branches, stack, immediates, I/O, control ===
	switch {
	case b&0xC7 == 0xC0:
		return one(RNZ+OpCode(ccc), 5)
	case b&0xC7 == 0xC2:
		return Instruction{Op: JNZ + OpCode(ccc), Size: 3, Cycles: 10}
	case b&0xC7 == 0xC4:
		return Instruction{Op: CNZ + OpCode(ccc), Size: 3, Cycles: 11}
	case b&0xC7 == 0xC6:
		return Instruction{Op: aluImmOps[ccc], Size: 2, Cycles: 7}
	case b&0xC7 == 0xC7:
		return Instruction{Op: RST, Imm: uint16(ccc), Size: 1, Cycles: 11}
	case b&0xCF == 0xC1:
		return Instruction{Op: POP, Pair: stackPair(rp), Size: 1, Cycles: 10}
	case b&0xCF == 0xC5:
		return Instruction{Op: PUSH, Pair: stackPair(rp), Size: 1, Cycles: 11}
	}
	switch b {
	case 0xC3:
		return Instruction{Op: JMP, Size: 3, Cycles: 10}
	case 0xC9:
		return one(RET, 10)
	case 0xCD:
		return Instruction{Op: CALL, Size: 3, Cycles: 17}
	case 0xD3:
		return Instruction{Op: OUT, Size: 2, Cycles: 10}
	case 0xDB:
		return Instruction{Op: IN, Size: 2, Cycles: 10}
	case 0xE3:
		return one(XTHL, 18)
	case 0xE9:
		return one(PCHL, 5)
	case 0xEB:
		return one(XCHG, 4)
	case 0xF3:
		return one(DI, 4)
	case 0xF9:
		return one(SPHL, 5)
	case 0xFB:
		return one(EI, 4)
	}
	// CBh, D9h, DDh, EDh and FDh are undocumented and run as NOP.
	return one(NOP, 4)
}

func cyclesM(r Reg, reg, mem int) int {
	if r == RegM {
		return mem
	}
	return reg
}

// stackPair maps encoding value 3 to PSW for PUSH and POP.
func stackPair(p Pair) Pair {
	if p == PairSP {
		return PairPSW
	}
	return p
}
