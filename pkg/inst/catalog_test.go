package inst

import (
	"testing"
)

// TestCatalogCompleteness verifies every OpCode has a catalog entry.
func TestCatalogCompleteness(t *testing.T) {
	seen := make(map[string]OpCode)
	for op := OpCode(0); op < OpCodeCount; op++ {
		info := &Catalog[op]
		if info.Mnemonic == "" {
			t.Errorf("OpCode %d has no mnemonic", op)
			continue
		}
		if prev, dup := seen[info.Mnemonic]; dup {
			t.Errorf("OpCode %d and %d share mnemonic %s", prev, op, info.Mnemonic)
		}
		seen[info.Mnemonic] = op
	}
}

// TestEveryOpCodeDecodable verifies each OpCode is reachable from at least
// one opcode byte.
func TestEveryOpCodeDecodable(t *testing.T) {
	var reached [OpCodeCount]bool
	for b := 0; b < 256; b++ {
		reached[decodeByte(t, uint8(b)).Op] = true
	}
	for op := OpCode(0); op < OpCodeCount; op++ {
		if !reached[op] {
			t.Errorf("%s has no opcode byte", op)
		}
	}
}

// TestCondition verifies the condition mapping for conditional branches.
func TestCondition(t *testing.T) {
	tests := []struct {
		op   OpCode
		want Cond
	}{
		{JNZ, CondNZ}, {JM, CondM}, {CC, CondC}, {CPE, CondPE},
		{RZ, CondZ}, {RP, CondP}, {CNC, CondNC}, {RPO, CondPO},
	}
	for _, tc := range tests {
		got, ok := Condition(tc.op)
		if !ok || got != tc.want {
			t.Errorf("Condition(%s) = %s, %v; want %s", tc.op, got, ok, tc.want)
		}
	}
	for _, op := range []OpCode{JMP, CALL, RET, RST, CPI, CMP, NOP} {
		if _, ok := Condition(op); ok {
			t.Errorf("%s should not be conditional", op)
		}
	}
}

// TestDisassemble verifies mnemonic generation.
func TestDisassemble(t *testing.T) {
	tests := []struct {
		code []byte
		want string
	}{
		{[]byte{0x00}, "NOP"},
		{[]byte{0x7E}, "MOV A, M"},
		{[]byte{0x41}, "MOV B, C"},
		{[]byte{0x3E, 0x3A}, "MVI A, 3Ah"},
		{[]byte{0x06, 0xFF}, "MVI B, 0FFh"},
		{[]byte{0x21, 0x00, 0x24}, "LXI H, 2400h"},
		{[]byte{0x31, 0x00, 0xF0}, "LXI SP, 0F000h"},
		{[]byte{0xCD, 0xE6, 0x01}, "CALL 01E6h"},
		{[]byte{0xDA, 0x34, 0x12}, "JC 1234h"},
		{[]byte{0xF5}, "PUSH PSW"},
		{[]byte{0x39}, "DAD SP"},
		{[]byte{0xCF}, "RST 1"},
		{[]byte{0xD3, 0x02}, "OUT 02h"},
		{[]byte{0xE6, 0x0F}, "ANI 0Fh"},
		{[]byte{0x86}, "ADD M"},
		{[]byte{0x34}, "INR M"},
		{[]byte{0xF8}, "RM"},
		{[]byte{0x76}, "HLT"},
	}
	for _, tc := range tests {
		in, err := Decode(tc.code)
		if err != nil {
			t.Errorf("Decode(% X): %v", tc.code, err)
			continue
		}
		if got := Disassemble(in); got != tc.want {
			t.Errorf("Disassemble(% X): got %q want %q", tc.code, got, tc.want)
		}
	}
}

// TestOpCodeCount verifies the total number of opcodes.
func TestOpCodeCount(t *testing.T) {
	if OpCodeCount != 78 {
		t.Errorf("OpCodeCount = %d, want 78 8080 mnemonics", OpCodeCount)
	}
}

// TestSeqByteSize verifies sequence byte size and cycle totals.
func TestSeqByteSize(t *testing.T) {
	seq, err := ParseSeq("MOV A, B : MVI A, 42h : JMP 0000h")
	if err != nil {
		t.Fatal(err)
	}
	if SeqByteSize(seq) != 6 {
		t.Errorf("SeqByteSize: got %d want 6", SeqByteSize(seq))
	}
	if SeqCycles(seq) != 5+7+10 {
		t.Errorf("SeqCycles: got %d want 22", SeqCycles(seq))
	}
}
