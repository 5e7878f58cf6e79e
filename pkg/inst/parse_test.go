package inst

import (
	"bytes"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want []byte
	}{
		{"NOP", []byte{0x00}},
		{"mov a, m", []byte{0x7E}},
		{"MOV B,C", []byte{0x41}},
		{"MVI A, 3Ah", []byte{0x3E, 0x3A}},
		{"MVI A, 0x3A", []byte{0x3E, 0x3A}},
		{"MVI A, 58", []byte{0x3E, 0x3A}},
		{"MVI B, 0FFh", []byte{0x06, 0xFF}},
		{"LXI SP, 2400h", []byte{0x31, 0x00, 0x24}},
		{"LXI HL, 1234h", []byte{0x21, 0x34, 0x12}},
		{"CALL 01E6h", []byte{0xCD, 0xE6, 0x01}},
		{"CC 0100h", []byte{0xDC, 0x00, 0x01}},
		{"PUSH PSW", []byte{0xF5}},
		{"POP D", []byte{0xD1}},
		{"RST 2", []byte{0xD7}},
		{"ANI 0Fh", []byte{0xE6, 0x0F}},
		{"OUT 2", []byte{0xD3, 0x02}},
		{"RPE", []byte{0xE8}},
	}
	for _, tc := range tests {
		in, err := Parse(tc.text)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.text, err)
			continue
		}
		got, err := Encode(in)
		if err != nil {
			t.Errorf("Encode(Parse(%q)): %v", tc.text, err)
			continue
		}
		if !bytes.Equal(got, tc.want) {
			t.Errorf("Parse(%q) encodes to % X, want % X", tc.text, got, tc.want)
		}
		if in.Size != len(tc.want) {
			t.Errorf("Parse(%q): size %d, want %d", tc.text, in.Size, len(tc.want))
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"FOO",
		"MOV A",
		"MOV M, M",
		"MVI Q, 1",
		"MVI A, 100h",
		"LXI PSW, 0",
		"RST 8",
		"NOP 1",
		"STAX H",
		"JMP xyz",
	}
	for _, text := range tests {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q): expected error", text)
		}
	}
	if _, err := Parse("MOV M, M"); !errors.Is(err, ErrNoEncoding) {
		t.Errorf("MOV M, M: err = %v, want ErrNoEncoding", err)
	}
}

// TestDisassembleParseRoundTrip verifies Parse accepts everything
// Disassemble prints.
func TestDisassembleParseRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		in, err := Decode([]byte{uint8(b), 0xA5, 0xC3})
		if err != nil {
			continue
		}
		text := Disassemble(in)
		got, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q): %v", text, err)
			continue
		}
		if in.Op == NOP {
			continue
		}
		if got != in {
			t.Errorf("Parse(%q) = %+v, want %+v", text, got, in)
		}
	}
}

func TestAssemble(t *testing.T) {
	code, err := Assemble(`
		LXI SP, 0100h   ; stack
		MVI A, 3Ah : ANI 0Fh
		HLT`)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x31, 0x00, 0x01, 0x3E, 0x3A, 0xE6, 0x0F, 0x76}
	if !bytes.Equal(code, want) {
		t.Errorf("Assemble: got % X want % X", code, want)
	}
	if _, err := Assemble("; nothing"); err == nil {
		t.Error("Assemble of an empty program should fail")
	}
}
