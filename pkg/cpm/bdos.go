package cpm

import (
	"errors"
	"io"

	"github.com/oisee/i8080/pkg/cpu"
)

// eof is what C_READ returns once input is exhausted (CP/M's ^Z).
const eof = 0x1A

func defaultSyscalls() map[uint8]Syscall {
	return map[uint8]Syscall{
		0: {Desc: "P_TERMCPM", Handler: sysExit},
		1: {Desc: "C_READ", Handler: sysReadChar},
		2: {Desc: "C_WRITE", Handler: sysWriteChar},
		9: {Desc: "C_WRITESTRING", Handler: sysWriteString},
	}
}

func sysExit(s *Session, _ *cpu.State) error {
	s.done = true
	return nil
}

// sysReadChar reads one byte into A and echoes it.
func sysReadChar(s *Session, st *cpu.State) error {
	if s.input == nil {
		st.A = eof
		return nil
	}
	c, err := s.input.ReadByte()
	if errors.Is(err, io.EOF) {
		st.A = eof
		return nil
	}
	if err != nil {
		return err
	}
	st.A = c
	_, err = s.console.Write([]byte{c})
	return err
}

// sysWriteChar prints E.
func sysWriteChar(s *Session, st *cpu.State) error {
	_, err := s.console.Write([]byte{st.E})
	return err
}

// sysWriteString prints the '$'-terminated string at DE. A string that
// runs off the top of memory stops at FFFFh.
func sysWriteString(s *Session, st *cpu.State) error {
	var buf []byte
	for addr := uint32(st.DE()); addr <= 0xFFFF; addr++ {
		c := st.Mem.Read(uint16(addr))
		if c == '$' {
			break
		}
		buf = append(buf, c)
	}
	_, err := s.console.Write(buf)
	return err
}
