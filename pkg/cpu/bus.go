package cpu

// Memory is the 16-bit address space as seen by the CPU. Each machine
// supplies its own implementation (ROM regions, mirrors, video RAM).
type Memory interface {
	// Read returns the byte at addr. Unbacked addresses read as a
	// machine-specific default; Read never fails.
	Read(addr uint16) uint8

	// Window returns the bytes from addr to the end of the contiguous region
	// containing it. The decoder looks at most 3 bytes ahead; the window may
	// be shorter near the top of a region.
	Window(addr uint16) []uint8

	// Write stores v at addr. Writes to read-only regions are ignored.
	Write(addr uint16, v uint8)
}

// IO is the port-mapped peripheral bus.
type IO interface {
	// In returns the value an IN instruction reads from port.
	In(port uint8) (uint8, error)

	// Out receives the value an OUT instruction writes to port. It gets the
	// CPU state so handlers can inspect registers and memory (e.g. a BDOS
	// console call that prints the string at DE).
	Out(s *State, port uint8, v uint8) error
}
