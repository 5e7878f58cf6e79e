package inst

// OpCode identifies an 8080 mnemonic (not the raw byte encoding).
// Several raw bytes share one OpCode: MOV has 63 encodings, the NOP aliases
// decode to NOP, and so on. The operands that tell them apart live in
// Instruction.
type OpCode uint8

// Reg selects an 8-bit operand. The numeric values match the 3-bit register
// field of the 8080 encoding, so RegM (memory at HL) sits between L and A.
type Reg uint8

const (
	RegB Reg = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegM // memory byte addressed by HL
	RegA
)

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "?"
}

// Pair selects a register pair. PairSP and PairPSW share the 2-bit encoding
// value 3; which one applies depends on the instruction (PUSH/POP use PSW,
// everything else uses SP).
type Pair uint8

const (
	PairB Pair = iota
	PairD
	PairH
	PairSP
	PairPSW
)

var pairNames = [5]string{"B", "D", "H", "SP", "PSW"}

func (p Pair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return "?"
}

// Cond is a branch predicate over the condition codes, in encoding order.
type Cond uint8

const (
	CondNZ Cond = iota // zero clear
	CondZ              // zero set
	CondNC             // carry clear
	CondC              // carry set
	CondPO             // parity odd (parity flag clear)
	CondPE             // parity even (parity flag set)
	CondP              // plus (sign clear)
	CondM              // minus (sign set)
)

var condNames = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "?"
}

// Instruction is one decoded 8080 instruction. It is a plain value: the
// decoder creates a fresh one for every fetch and nothing mutates it.
//
// Which operand fields are meaningful depends on Op:
//
//	MOV            Dst, Src
//	MVI            Dst, Imm (8-bit)
//	INR, DCR       Dst
//	ALU register   Src (ADD, ADC, SUB, SBB, ANA, XRA, ORA, CMP)
//	ALU immediate  Imm (8-bit)
//	LXI            Pair, Imm (16-bit)
//	pair ops       Pair (STAX, LDAX, INX, DCX, DAD, PUSH, POP)
//	JMP/CALL/Jcc   Imm (16-bit address)
//	STA/LDA/...    Imm (16-bit address)
//	IN, OUT        Imm (port)
//	RST            Imm (restart number 0-7)
type Instruction struct {
	Op     OpCode
	Dst    Reg
	Src    Reg
	Pair   Pair
	Imm    uint16
	Size   int // encoded length in bytes, 1-3
	Cycles int // base cycle count; conditional CALL/RET add 6 when taken
}

// OpCode constants, grouped the way the 8080 manual groups them.
const (
	// === Data transfer ===
	MOV OpCode = iota
	MVI
	LXI
	LDA
	STA
	LHLD
	SHLD
	LDAX
	STAX
	XCHG

	// === Arithmetic, register/memory operand ===
	ADD
	ADC
	SUB
	SBB
	INR
	DCR
	INX
	DCX
	DAD
	DAA

	// === Arithmetic, immediate operand ===
	ADI
	ACI
	SUI
	SBI

	// === Logical ===
	ANA
	XRA
	ORA
	CMP
	ANI
	XRI
	ORI
	CPI
	RLC
	RRC
	RAL
	RAR
	CMA
	CMC
	STC

	// === Branch ===
	JMP
	JNZ
	JZ
	JNC
	JC
	JPO
	JPE
	JP
	JM
	CALL
	CNZ
	CZ
	CNC
	CC
	CPO
	CPE
	CP
	CM
	RET
	RNZ
	RZ
	RNC
	RC
	RPO
	RPE
	RP
	RM
	RST
	PCHL

	// === Stack, I/O and machine control ===
	PUSH
	POP
	XTHL
	SPHL
	IN
	OUT
	EI
	DI
	HLT
	NOP

	OpCodeCount // sentinel
)

// Condition returns the predicate of a conditional jump, call or return.
// ok is false for every other opcode.
func Condition(op OpCode) (c Cond, ok bool) {
	switch {
	case op >= JNZ && op <= JM:
		return Cond(op - JNZ), true
	case op >= CNZ && op <= CM:
		return Cond(op - CNZ), true
	case op >= RNZ && op <= RM:
		return Cond(op - RNZ), true
	}
	return 0, false
}
