package inst

// Format describes which operand fields of an Instruction an opcode uses and
// how they are written in assembly.
type Format uint8

const (
	FmtNone      Format = iota // NOP
	FmtMov                     // MOV A, M
	FmtDst                     // INR B
	FmtDstImm8                 // MVI B, 3Ah
	FmtSrc                     // ADD M
	FmtImm8                    // ADI 0Fh, OUT 02h
	FmtPair                    // PUSH PSW
	FmtPairImm16               // LXI SP, 2400h
	FmtImm16                   // JMP 01E6h
	FmtRst                     // RST 1
)

// Info holds static metadata for an opcode.
type Info struct {
	Mnemonic string // Assembly mnemonic (e.g., "MOV")
	Format   Format
}

// Catalog maps each OpCode to its Info.
var Catalog [OpCodeCount]Info

// byMnemonic is the reverse of Catalog, used by the assembler.
var byMnemonic = make(map[string]OpCode, OpCodeCount)

func (op OpCode) String() string {
	if op < OpCodeCount {
		return Catalog[op].Mnemonic
	}
	return "???"
}

// Disassemble returns assembly text for an instruction.
func Disassemble(in Instruction) string {
	if in.Op >= OpCodeCount {
		return "???"
	}
	info := &Catalog[in.Op]
	buf := make([]byte, 0, 16)
	buf = append(buf, info.Mnemonic...)

	switch info.Format {
	case FmtMov:
		buf = append(buf, ' ')
		buf = append(buf, in.Dst.String()...)
		buf = append(buf, ", "...)
		buf = append(buf, in.Src.String()...)
	case FmtDst:
		buf = append(buf, ' ')
		buf = append(buf, in.Dst.String()...)
	case FmtDstImm8:
		buf = append(buf, ' ')
		buf = append(buf, in.Dst.String()...)
		buf = append(buf, ", "...)
		buf = appendHex8(buf, uint8(in.Imm))
	case FmtSrc:
		buf = append(buf, ' ')
		buf = append(buf, in.Src.String()...)
	case FmtImm8:
		buf = append(buf, ' ')
		buf = appendHex8(buf, uint8(in.Imm))
	case FmtPair:
		buf = append(buf, ' ')
		buf = append(buf, in.Pair.String()...)
	case FmtPairImm16:
		buf = append(buf, ' ')
		buf = append(buf, in.Pair.String()...)
		buf = append(buf, ", "...)
		buf = appendHex16(buf, in.Imm)
	case FmtImm16:
		buf = append(buf, ' ')
		buf = appendHex16(buf, in.Imm)
	case FmtRst:
		buf = append(buf, ' ', '0'+byte(in.Imm&7))
	}
	return string(buf)
}

func appendHex8(buf []byte, v uint8) []byte {
	const hex = "0123456789ABCDEF"
	if v >= 0xA0 {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>4], hex[v&0x0F], 'h')
	return buf
}

func appendHex16(buf []byte, v uint16) []byte {
	const hex = "0123456789ABCDEF"
	if v>>12 >= 0xA {
		buf = append(buf, '0')
	}
	buf = append(buf, hex[v>>12], hex[(v>>8)&0x0F], hex[(v>>4)&0x0F], hex[v&0x0F], 'h')
	return buf
}

// SeqByteSize returns total byte size for a sequence of instructions.
func SeqByteSize(seq []Instruction) int {
	n := 0
	for i := range seq {
		n += seq[i].Size
	}
	return n
}

// SeqCycles returns the total base cycle count for a sequence of instructions.
func SeqCycles(seq []Instruction) int {
	t := 0
	for i := range seq {
		t += seq[i].Cycles
	}
	return t
}

func init() {
	entries := []struct {
		op       OpCode
		mnemonic string
		format   Format
	}{
		// Data transfer
		{MOV, "MOV", FmtMov},
		{MVI, "MVI", FmtDstImm8},
		{LXI, "LXI", FmtPairImm16},
		{LDA, "LDA", FmtImm16},
		{STA, "STA", FmtImm16},
		{LHLD, "LHLD", FmtImm16},
		{SHLD, "SHLD", FmtImm16},
		{LDAX, "LDAX", FmtPair},
		{STAX, "STAX", FmtPair},
		{XCHG, "XCHG", FmtNone},

		// Arithmetic
		{ADD, "ADD", FmtSrc},
		{ADC, "ADC", FmtSrc},
		{SUB, "SUB", FmtSrc},
		{SBB, "SBB", FmtSrc},
		{INR, "INR", FmtDst},
		{DCR, "DCR", FmtDst},
		{INX, "INX", FmtPair},
		{DCX, "DCX", FmtPair},
		{DAD, "DAD", FmtPair},
		{DAA, "DAA", FmtNone},
		{ADI, "ADI", FmtImm8},
		{ACI, "ACI", FmtImm8},
		{SUI, "SUI", FmtImm8},
		{SBI, "SBI", FmtImm8},

		// Logical
		{ANA, "ANA", FmtSrc},
		{XRA, "XRA", FmtSrc},
		{ORA, "ORA", FmtSrc},
		{CMP, "CMP", FmtSrc},
		{ANI, "ANI", FmtImm8},
		{XRI, "XRI", FmtImm8},
		{ORI, "ORI", FmtImm8},
		{CPI, "CPI", FmtImm8},
		{RLC, "RLC", FmtNone},
		{RRC, "RRC", FmtNone},
		{RAL, "RAL", FmtNone},
		{RAR, "RAR", FmtNone},
		{CMA, "CMA", FmtNone},
		{CMC, "CMC", FmtNone},
		{STC, "STC", FmtNone},

		// Branch
		{JMP, "JMP", FmtImm16},
		{CALL, "CALL", FmtImm16},
		{RET, "RET", FmtNone},
		{RST, "RST", FmtRst},
		{PCHL, "PCHL", FmtNone},

		// Stack, I/O, machine control
		{PUSH, "PUSH", FmtPair},
		{POP, "POP", FmtPair},
		{XTHL, "XTHL", FmtNone},
		{SPHL, "SPHL", FmtNone},
		{IN, "IN", FmtImm8},
		{OUT, "OUT", FmtImm8},
		{EI, "EI", FmtNone},
		{DI, "DI", FmtNone},
		{HLT, "HLT", FmtNone},
		{NOP, "NOP", FmtNone},
	}
	for _, e := range entries {
		Catalog[e.op] = Info{Mnemonic: e.mnemonic, Format: e.format}
	}

	// Conditional forms: J/C/R followed by the condition name.
	for c := CondNZ; c <= CondM; c++ {
		Catalog[JNZ+OpCode(c)] = Info{Mnemonic: "J" + c.String(), Format: FmtImm16}
		Catalog[CNZ+OpCode(c)] = Info{Mnemonic: "C" + c.String(), Format: FmtImm16}
		Catalog[RNZ+OpCode(c)] = Info{Mnemonic: "R" + c.String(), Format: FmtNone}
	}

	for op := OpCode(0); op < OpCodeCount; op++ {
		byMnemonic[Catalog[op].Mnemonic] = op
	}
}
