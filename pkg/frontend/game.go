// Package frontend runs a Space Invaders cabinet in an ebiten window.
package frontend

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/oisee/i8080/pkg/display"
	"github.com/oisee/i8080/pkg/invaders"
	"github.com/oisee/i8080/pkg/snapshot"
)

// Keys maps keyboard keys to cabinet controls.
var Keys = map[ebiten.Key]invaders.Button{
	ebiten.KeyC:          invaders.Coin,
	ebiten.Key1:          invaders.Start1,
	ebiten.Key2:          invaders.Start2,
	ebiten.KeySpace:      invaders.Fire1,
	ebiten.KeyArrowLeft:  invaders.Left1,
	ebiten.KeyArrowRight: invaders.Right1,
	ebiten.KeyW:          invaders.Fire2,
	ebiten.KeyA:          invaders.Left2,
	ebiten.KeyD:          invaders.Right2,
	ebiten.KeyT:          invaders.Tilt,
}

// Options configure the window.
type Options struct {
	Scale        int    // window scale; 0 means 2
	SnapshotPath string // F2 saves here, F3 loads; empty disables
}

// Game adapts a cabinet to ebiten.Game: one emulated frame per tick.
type Game struct {
	cab   *invaders.Cabinet
	opts  Options
	img   *image.RGBA
	frame *ebiten.Image
}

// New returns a game for cab.
func New(cab *invaders.Cabinet, opts Options) *Game {
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	return &Game{cab: cab, opts: opts, img: display.NewImage()}
}

// Run opens the window and blocks until it is closed or the machine
// fails.
func Run(cab *invaders.Cabinet, opts Options) error {
	g := New(cab, opts)
	ebiten.SetWindowSize(display.Width*g.opts.Scale, display.Height*g.opts.Scale)
	ebiten.SetWindowTitle("Space Invaders")
	ebiten.SetTPS(invaders.FrameHz)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	applyKeys(g.cab.Board, ebiten.IsKeyPressed)

	if g.opts.SnapshotPath != "" {
		if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
			g.save()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
			g.load()
		}
	}
	return g.cab.RunFrame()
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		g.frame = ebiten.NewImage(display.Width, display.Height)
	}
	display.Render(g.cab.VRAM(), g.img)
	g.frame.WritePixels(g.img.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return display.Width, display.Height
}

// applyKeys sets every control from the state of its key.
func applyKeys(b *invaders.Board, pressed func(ebiten.Key) bool) {
	for key, btn := range Keys {
		if pressed(key) {
			b.Press(btn)
		} else {
			b.Release(btn)
		}
	}
}

func (g *Game) save() {
	if err := snapshot.Save(g.opts.SnapshotPath, g.cab.Snapshot()); err != nil {
		fmt.Printf("save state: %v\n", err)
		return
	}
	fmt.Printf("Saved state to %s\n", g.opts.SnapshotPath)
}

func (g *Game) load() {
	sn, err := snapshot.Load(g.opts.SnapshotPath)
	if err == nil {
		err = g.cab.Restore(sn)
	}
	if err != nil {
		fmt.Printf("load state: %v\n", err)
		return
	}
	fmt.Printf("Loaded state from %s\n", g.opts.SnapshotPath)
}
