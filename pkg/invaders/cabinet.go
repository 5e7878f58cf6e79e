package invaders

import (
	"io"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/machine"
	"github.com/oisee/i8080/pkg/snapshot"
)

// Timing. The video hardware raises RST 1 when the beam reaches the middle
// of the screen and RST 2 at vertical blank, so the game sees two
// interrupts per 60 Hz frame.
const (
	ClockHz            = 2_000_000
	FrameHz            = 60
	CyclesPerHalfFrame = ClockHz / FrameHz / 2
)

// Cabinet is a complete machine: CPU driver, memory and board.
type Cabinet struct {
	*machine.Machine
	Mem   *Memory
	Board *Board
}

// New wires mem and a fresh board into a machine with arcade timing.
func New(mem *Memory, snd Sound, trace io.Writer) *Cabinet {
	board := NewBoard(snd)
	return &Cabinet{
		Machine: machine.New(mem, board, machine.Config{
			CyclesPerInterrupt: CyclesPerHalfFrame,
			Vectors:            []uint16{cpu.RST(1), cpu.RST(2)},
			Trace:              trace,
		}),
		Mem:   mem,
		Board: board,
	}
}

// NewMachine loads the ROM set from romDir and returns a cabinet ready to
// run. snd may be nil for silent operation.
func NewMachine(romDir string, snd Sound) (*Cabinet, error) {
	mem := new(Memory)
	if err := LoadROM(mem, romDir); err != nil {
		return nil, err
	}
	return New(mem, snd, nil), nil
}

// VRAM returns the current frame buffer.
func (c *Cabinet) VRAM() []uint8 { return c.Mem.VRAM() }

// Snapshot captures the CPU, RAM and shift register.
func (c *Cabinet) Snapshot() *snapshot.Snapshot {
	sn := snapshot.Capture("invaders", c.State, RAMBase, c.Mem.RAM())
	sn.Latches["shift"] = c.Board.Shift.Reg()
	sn.Latches["shift.offset"] = uint16(c.Board.Shift.Offset())
	sn.Latches["port3"] = uint16(c.Board.Latch(3))
	sn.Latches["port5"] = uint16(c.Board.Latch(5))
	return sn
}

// Restore resumes from a snapshot taken by Snapshot. Sound latches are
// restored silently.
func (c *Cabinet) Restore(sn *snapshot.Snapshot) error {
	if err := sn.Restore("invaders", c.State, RAMBase, c.Mem.RAM()); err != nil {
		return err
	}
	c.Board.Shift.Restore(sn.Latches["shift"], uint8(sn.Latches["shift.offset"]))
	c.Board.latch[3] = uint8(sn.Latches["port3"])
	c.Board.latch[5] = uint8(sn.Latches["port5"])
	return nil
}
