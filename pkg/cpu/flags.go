package cpu

import "github.com/oisee/i8080/pkg/inst"

// 8080 flag bit positions in the packed flag byte (the low half of PSW).
const (
	FlagC  uint8 = 0x01 // Carry
	Flag1  uint8 = 0x02 // Always reads as 1
	FlagP  uint8 = 0x04 // Parity (even)
	FlagAC uint8 = 0x10 // Auxiliary carry
	FlagZ  uint8 = 0x40 // Zero
	FlagS  uint8 = 0x80 // Sign
)

// Flags holds the five condition codes.
type Flags struct {
	Zero, Sign, Parity, Carry, AuxCarry bool
}

// ParityTable reports even parity for each byte value.
var ParityTable [256]bool

func init() {
	for i := 0; i < 256; i++ {
		j := uint8(i)
		parity := uint8(0)
		for k := 0; k < 8; k++ {
			parity ^= j & 1
			j >>= 1
		}
		ParityTable[i] = parity == 0
	}
}

// Pack returns the flag byte PUSH PSW stores: S Z 0 AC 0 P 1 C.
func (f Flags) Pack() uint8 {
	return bsel(f.Sign, FlagS, 0) |
		bsel(f.Zero, FlagZ, 0) |
		bsel(f.AuxCarry, FlagAC, 0) |
		bsel(f.Parity, FlagP, 0) |
		Flag1 |
		bsel(f.Carry, FlagC, 0)
}

// Unpack loads the flags from a packed byte. Bits 1, 3 and 5 are ignored.
func (f *Flags) Unpack(b uint8) {
	f.Sign = b&FlagS != 0
	f.Zero = b&FlagZ != 0
	f.AuxCarry = b&FlagAC != 0
	f.Parity = b&FlagP != 0
	f.Carry = b&FlagC != 0
}

// Test evaluates a branch condition.
func (f Flags) Test(c inst.Cond) bool {
	switch c {
	case inst.CondNZ:
		return !f.Zero
	case inst.CondZ:
		return f.Zero
	case inst.CondNC:
		return !f.Carry
	case inst.CondC:
		return f.Carry
	case inst.CondPO:
		return !f.Parity
	case inst.CondPE:
		return f.Parity
	case inst.CondP:
		return !f.Sign
	case inst.CondM:
		return f.Sign
	}
	return false
}

// setZSP recomputes zero, sign and parity from an 8-bit result.
func (f *Flags) setZSP(v uint8) {
	f.Zero = v == 0
	f.Sign = v&0x80 != 0
	f.Parity = ParityTable[v]
}

func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
