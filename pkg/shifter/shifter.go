// Package shifter models the external 16-bit barrel shifter found on
// Midway 8080 boards. The CPU pushes bytes into the top of a 16-bit
// register and reads back an 8-bit window selected by a 3-bit offset.
package shifter

// Shifter is the shift register and its offset latch. The zero value is
// ready to use.
type Shifter struct {
	reg    uint16
	offset uint8
}

// Push shifts v into the high byte; the previous high byte moves down.
func (s *Shifter) Push(v uint8) {
	s.reg = uint16(v)<<8 | s.reg>>8
}

// SetOffset latches the read offset. Only the low three bits are used.
func (s *Shifter) SetOffset(v uint8) {
	s.offset = v & 7
}

// Result returns the eight bits starting offset bits below the top.
func (s *Shifter) Result() uint8 {
	return uint8(s.reg >> (8 - s.offset))
}

// Reg and Offset expose the latched values for save states.
func (s *Shifter) Reg() uint16   { return s.reg }
func (s *Shifter) Offset() uint8 { return s.offset }

// Restore sets the latched values from a save state.
func (s *Shifter) Restore(reg uint16, offset uint8) {
	s.reg, s.offset = reg, offset&7
}
