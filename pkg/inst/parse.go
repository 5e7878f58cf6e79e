package inst

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSeq converts assembly text like "MVI A, 3Ah : ANI 0Fh" into
// instructions. Instructions are separated by ':' or newlines; anything after
// ';' on a line is a comment.
func ParseSeq(text string) ([]Instruction, error) {
	var seq []Instruction
	for _, line := range strings.Split(text, "\n") {
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		for _, part := range strings.Split(line, ":") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			in, err := Parse(part)
			if err != nil {
				return nil, fmt.Errorf("cannot parse %q: %w", part, err)
			}
			seq = append(seq, in)
		}
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("no instructions parsed from %q", text)
	}
	return seq, nil
}

// Assemble parses text and returns the encoded program.
func Assemble(text string) ([]byte, error) {
	seq, err := ParseSeq(text)
	if err != nil {
		return nil, err
	}
	code := make([]byte, 0, SeqByteSize(seq))
	for _, in := range seq {
		b, err := Encode(in)
		if err != nil {
			return nil, err
		}
		code = append(code, b...)
	}
	return code, nil
}

// Parse converts a single line of 8080 assembly into an Instruction with
// Size and Cycles filled in.
func Parse(text string) (Instruction, error) {
	text = strings.TrimSpace(text)
	mnemonic, rest, _ := strings.Cut(text, " ")
	op, ok := byMnemonic[strings.ToUpper(mnemonic)]
	if !ok {
		return Instruction{}, fmt.Errorf("unknown instruction: %s", text)
	}

	var args []string
	if rest = strings.TrimSpace(rest); rest != "" {
		for _, a := range strings.Split(rest, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	in := Instruction{Op: op}
	var err error
	switch Catalog[op].Format {
	case FmtNone:
		err = wantArgs(args, 0)
	case FmtMov:
		if err = wantArgs(args, 2); err == nil {
			if in.Dst, err = parseReg(args[0]); err == nil {
				in.Src, err = parseReg(args[1])
			}
		}
	case FmtDst:
		if err = wantArgs(args, 1); err == nil {
			in.Dst, err = parseReg(args[0])
		}
	case FmtDstImm8:
		if err = wantArgs(args, 2); err == nil {
			if in.Dst, err = parseReg(args[0]); err == nil {
				in.Imm, err = parseImmediate(args[1], 0xFF)
			}
		}
	case FmtSrc:
		if err = wantArgs(args, 1); err == nil {
			in.Src, err = parseReg(args[0])
		}
	case FmtImm8:
		if err = wantArgs(args, 1); err == nil {
			in.Imm, err = parseImmediate(args[0], 0xFF)
		}
	case FmtPair:
		if err = wantArgs(args, 1); err == nil {
			in.Pair, err = parsePair(args[0])
		}
	case FmtPairImm16:
		if err = wantArgs(args, 2); err == nil {
			if in.Pair, err = parsePair(args[0]); err == nil {
				in.Imm, err = parseImmediate(args[1], 0xFFFF)
			}
		}
	case FmtImm16:
		if err = wantArgs(args, 1); err == nil {
			in.Imm, err = parseImmediate(args[0], 0xFFFF)
		}
	case FmtRst:
		if err = wantArgs(args, 1); err == nil {
			in.Imm, err = parseImmediate(args[0], 7)
		}
	}
	if err != nil {
		return Instruction{}, fmt.Errorf("%s: %w", Catalog[op].Mnemonic, err)
	}

	// Round-trip through the encoder to reject impossible operand
	// combinations and pick up Size and Cycles.
	code, err := Encode(in)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(code)
}

func wantArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("want %d operands, got %d", n, len(args))
	}
	return nil
}

func parseReg(s string) (Reg, error) {
	s = strings.ToUpper(s)
	for i, name := range regNames {
		if s == name {
			return Reg(i), nil
		}
	}
	return 0, fmt.Errorf("bad register %q", s)
}

func parsePair(s string) (Pair, error) {
	switch strings.ToUpper(s) {
	case "B", "BC":
		return PairB, nil
	case "D", "DE":
		return PairD, nil
	case "H", "HL":
		return PairH, nil
	case "SP":
		return PairSP, nil
	case "PSW", "AF":
		return PairPSW, nil
	}
	return 0, fmt.Errorf("bad register pair %q", s)
}

// parseImmediate accepts 0x1F, 1Fh, 01Fh and decimal forms.
func parseImmediate(s string, limit uint64) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty immediate")
	}

	var (
		v   uint64
		err error
	)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasSuffix(upper, "H"):
		v, err = strconv.ParseUint(s[:len(s)-1], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("bad immediate %q", s)
	}
	if v > limit {
		return 0, fmt.Errorf("immediate %q out of range", s)
	}
	return uint16(v), nil
}
