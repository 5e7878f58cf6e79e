//go:build !headless

package frontend

import (
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/oisee/i8080/pkg/invaders"
)

func TestApplyKeys(t *testing.T) {
	b := invaders.NewBoard(nil)
	held := map[ebiten.Key]bool{ebiten.KeySpace: true, ebiten.KeyC: true}
	applyKeys(b, func(k ebiten.Key) bool { return held[k] })
	// port 1: bit 3 always set, coin bit 0, fire bit 4
	if v, _ := b.In(1); v != 0x19 {
		t.Errorf("port 1 = %02X, want 19", v)
	}
	delete(held, ebiten.KeyC)
	held[ebiten.KeyArrowLeft] = true
	applyKeys(b, func(k ebiten.Key) bool { return held[k] })
	if v, _ := b.In(1); v != 0x38 {
		t.Errorf("port 1 after release = %02X, want 38", v)
	}
}

func TestKeysUnique(t *testing.T) {
	seen := make(map[invaders.Button]bool)
	for _, btn := range Keys {
		if seen[btn] {
			t.Errorf("button %b mapped twice", btn)
		}
		seen[btn] = true
	}
	if len(seen) != 10 {
		t.Errorf("%d buttons mapped, want 10", len(seen))
	}
}

func TestSaveLoad(t *testing.T) {
	cab := invaders.New(new(invaders.Memory), nil, nil)
	cab.State.PC = 0x1234
	g := New(cab, Options{SnapshotPath: filepath.Join(t.TempDir(), "s.gob")})
	g.save()
	cab.State.PC = 0
	g.load()
	if cab.State.PC != 0x1234 {
		t.Errorf("PC after load = %04X", cab.State.PC)
	}
	if w, h := g.Layout(0, 0); w != 224 || h != 256 {
		t.Errorf("Layout = %dx%d", w, h)
	}
}
