package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oisee/i8080/pkg/display"
	"github.com/oisee/i8080/pkg/frontend"
	"github.com/oisee/i8080/pkg/invaders"
	"github.com/oisee/i8080/pkg/snapshot"
	"github.com/oisee/i8080/pkg/sound"
)

// invaders command
func invadersCmd() *cobra.Command {
	var scale, frames, lives int
	var mute, bonus1000 bool
	var samples, screenshot, snapPath string

	cmd := &cobra.Command{
		Use:   "invaders [romdir]",
		Short: "Run the Space Invaders arcade board (invaders.h/g/f/e in romdir)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snd invaders.Sound
			if !mute && screenshot == "" {
				if player := openSound(samples); player != nil {
					defer player.Close()
					snd = player
				}
			}

			cab, err := invaders.NewMachine(args[0], snd)
			if err != nil {
				return err
			}
			cab.Board.DIP.Lives = lives
			cab.Board.DIP.BonusAt1000 = bonus1000

			if snapPath != "" {
				if _, err := os.Stat(snapPath); err == nil {
					sn, err := snapshot.Load(snapPath)
					if err != nil {
						return err
					}
					if err := cab.Restore(sn); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "Resumed from %s\n", snapPath)
				}
			}

			if screenshot != "" {
				return writeScreenshot(cab, screenshot, frames, scale)
			}
			return frontend.Run(cab, frontend.Options{Scale: scale, SnapshotPath: snapPath})
		},
	}
	cmd.Flags().IntVar(&scale, "scale", 2, "Window or screenshot scale factor")
	cmd.Flags().BoolVar(&mute, "mute", false, "Disable sound")
	cmd.Flags().StringVar(&samples, "samples", "", "Directory with 0.wav..8.wav (or .mp3) samples (default romdir)")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Run headless and write a PNG of the last frame")
	cmd.Flags().IntVar(&frames, "frames", 600, "Frames to run before --screenshot")
	cmd.Flags().StringVar(&snapPath, "snapshot", "", "Snapshot file: loaded at start if present, F2 saves, F3 loads")
	cmd.Flags().IntVar(&lives, "lives", 3, "Ships per game (3-6)")
	cmd.Flags().BoolVar(&bonus1000, "bonus-1000", false, "Extra ship at 1000 points instead of 1500")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if samples == "" {
			samples = args[0]
		}
	}
	return cmd
}

// openSound returns nil when samples or the audio device are unavailable;
// the game then runs silently.
func openSound(dir string) *sound.Player {
	bank, err := sound.LoadBank(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no sound: %v\n", err)
		return nil
	}
	player, err := sound.NewPlayer(bank)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no sound: %v\n", err)
		return nil
	}
	return player
}

func writeScreenshot(cab *invaders.Cabinet, path string, frames, scale int) error {
	for i := 0; i < frames; i++ {
		if err := cab.RunFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	img := display.NewImage()
	display.Render(cab.VRAM(), img)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := display.WritePNG(f, display.Scale(img, scale)); err != nil {
		return err
	}
	fmt.Printf("Ran %d frames, %d cycles; written to %s\n", frames, cab.Stats().Cycles, path)
	return nil
}
