package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*hexUint16)(nil)

// hexUint16 is a 16-bit address flag. It accepts 0x100, 100h and 100
// (hex by default); a leading # forces decimal.
type hexUint16 uint16

func (h *hexUint16) Set(s string) error {
	v, err := parseAddr(s)
	if err != nil {
		return err
	}
	*h = hexUint16(v)
	return nil
}

func (h *hexUint16) String() string { return fmt.Sprintf("%04Xh", uint16(*h)) }

func (h *hexUint16) Type() string { return "hex16" }

func parseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 16
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 10
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	case strings.HasSuffix(s, "h"), strings.HasSuffix(s, "H"):
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}
