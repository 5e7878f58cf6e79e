package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/memory"
)

func TestCaptureRestore(t *testing.T) {
	mem := memory.NewFlat()
	s := cpu.New(mem)
	s.A, s.B, s.L = 0x1F, 0x22, 0x33
	s.SP, s.PC = 0x2400, 0x18DC
	s.Carry, s.Zero = true, true
	s.InterruptsEnabled = true
	mem.Write(0x2000, 0xAA)

	ram := mem.Bytes()[0x2000:0x4000]
	sn := Capture("test", s, 0x2000, ram)
	sn.Latches["shift"] = 0x1234

	var buf bytes.Buffer
	if err := Encode(&buf, sn); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	mem2 := memory.NewFlat()
	s2 := cpu.New(mem2)
	if err := got.Restore("test", s2, 0x2000, mem2.Bytes()[0x2000:0x4000]); err != nil {
		t.Fatal(err)
	}
	if s2.A != 0x1F || s2.B != 0x22 || s2.L != 0x33 || s2.SP != 0x2400 || s2.PC != 0x18DC {
		t.Errorf("registers not restored: %+v", s2)
	}
	if !s2.Carry || !s2.Zero || s2.Sign || !s2.InterruptsEnabled {
		t.Errorf("flags not restored: %+v", s2.Flags)
	}
	if mem2.Read(0x2000) != 0xAA {
		t.Errorf("RAM not restored")
	}
	if got.Latches["shift"] != 0x1234 {
		t.Errorf("latches: %v", got.Latches)
	}
}

func TestRestoreMismatch(t *testing.T) {
	s := cpu.New(memory.NewFlat())
	sn := Capture("invaders", s, 0x2000, make([]byte, 0x2000))
	if err := sn.Restore("cpm", s, 0x2000, make([]byte, 0x2000)); !errors.Is(err, ErrMismatch) {
		t.Errorf("machine mismatch: %v", err)
	}
	if err := sn.Restore("invaders", s, 0x2000, make([]byte, 0x100)); !errors.Is(err, ErrMismatch) {
		t.Errorf("size mismatch: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.gob")
	s := cpu.New(memory.NewFlat())
	s.PC = 0x0100
	if err := Save(path, Capture("cpm", s, 0, []byte{1, 2, 3})); err != nil {
		t.Fatal(err)
	}
	sn, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if sn.PC != 0x0100 || !bytes.Equal(sn.RAM, []byte{1, 2, 3}) {
		t.Errorf("Load: %+v", sn)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
