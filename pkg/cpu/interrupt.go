package cpu

// RST returns the entry address of restart n (0-7).
func RST(n uint8) uint16 {
	return uint16(n&7) * 8
}

// Interrupt delivers an external interrupt that jumps to vector, as if the
// interrupting device had put a CALL on the bus. If interrupts are disabled
// it does nothing and returns false. Otherwise it disables further
// interrupts, wakes a halted CPU, pushes PC and jumps.
//
// The 8080 delays EI by one instruction; that delay is not modelled.
func Interrupt(s *State, vector uint16) bool {
	if !s.InterruptsEnabled {
		return false
	}
	s.InterruptsEnabled = false
	s.Halted = false
	s.push(s.PC)
	s.PC = vector
	return true
}
