package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oisee/i8080/pkg/batch"
	"github.com/oisee/i8080/pkg/cpm"
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/inst"
	"github.com/oisee/i8080/pkg/machine"
	"github.com/oisee/i8080/pkg/memory"
	"github.com/oisee/i8080/pkg/report"
	"github.com/oisee/i8080/pkg/snapshot"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "i8080",
		Short:         "Intel 8080 emulator: CP/M diagnostics, Space Invaders, disassembler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd(), testCmd(), disasmCmd(), execCmd(), invadersCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run command
func runCmd() *cobra.Command {
	var maxCycles int64
	var verbose bool
	var saveState string

	cmd := &cobra.Command{
		Use:   "run [file.com]",
		Short: "Run a CP/M program with console BDOS calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cpm.Config{Console: os.Stdout, Input: os.Stdin}
			if verbose {
				cfg.Trace = os.Stderr
			}
			if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
				old, err := term.MakeRaw(fd)
				if err != nil {
					return err
				}
				defer term.Restore(fd, old)
				cfg.Console = crlf{os.Stdout}
			}

			s, err := cpm.Load(args[0], cfg)
			if err != nil {
				return err
			}
			res, runErr := s.Run(maxCycles)
			if saveState != "" {
				if err := snapshot.Save(saveState, s.Snapshot()); err != nil {
					return err
				}
			}
			fmt.Printf("\r\n\r\nInstructions: %d\r\nCycles: %d\r\n", res.Instructions, res.Cycles)
			return runErr
		},
	}
	cmd.Flags().Int64Var(&maxCycles, "max-cycles", 0, "Stop after this many cycles (0 = unlimited)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace every instruction to stderr")
	cmd.Flags().StringVar(&saveState, "save-state", "", "Write a snapshot to this file when the program ends")
	return cmd
}

// crlf expands bare line feeds for a terminal in raw mode.
type crlf struct{ w io.Writer }

func (c crlf) Write(p []byte) (int, error) {
	if _, err := c.w.Write([]byte(strings.ReplaceAll(string(p), "\n", "\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// test command
func testCmd() *cobra.Command {
	var numWorkers int
	var output, baseline string
	var maxCycles int64
	var verbose bool

	cmd := &cobra.Command{
		Use:   "test [file.com...]",
		Short: "Run CP/M diagnostics in parallel and report pass/fail",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := batch.Config{
				NumWorkers: numWorkers,
				MaxCycles:  maxCycles,
				Verbose:    verbose,
			}
			table := batch.Run(cfg, args)
			entries := table.Entries()

			for _, e := range entries {
				status := "PASS"
				if !e.Passed {
					status = "FAIL"
				}
				fmt.Printf("%-4s %-16s %12d instructions %14d cycles\n", status, e.Program, e.Instructions, e.Cycles)
				if e.Error != "" {
					fmt.Printf("     %s\n", e.Error)
				}
			}

			if baseline != "" {
				f, err := os.Open(baseline)
				if err != nil {
					return err
				}
				prev, err := report.ReadJSON(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", baseline, err)
				}
				for _, line := range compareRuns(prev, entries) {
					fmt.Println(line)
				}
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := report.WriteJSON(f, entries); err != nil {
					return err
				}
				fmt.Printf("Written to %s\n", output)
			}
			if n := table.Failed(); n > 0 {
				return fmt.Errorf("%d of %d programs failed", n, table.Len())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	cmd.Flags().StringVar(&output, "output", "", "Output JSON file path")
	cmd.Flags().StringVar(&baseline, "baseline", "", "JSON report of a previous run to compare against")
	cmd.Flags().Int64Var(&maxCycles, "max-cycles", 50_000_000_000, "Per-program cycle limit (0 = unlimited)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	return cmd
}

// compareRuns reports programs whose status changed since a previous run,
// and programs whose cycle count differs.
func compareRuns(prev, cur []report.Entry) []string {
	old := make(map[string]report.Entry, len(prev))
	for _, e := range prev {
		old[e.Program] = e
	}
	var lines []string
	for _, e := range cur {
		p, ok := old[e.Program]
		switch {
		case !ok:
			lines = append(lines, fmt.Sprintf("NEW        %s", e.Program))
		case p.Passed && !e.Passed:
			lines = append(lines, fmt.Sprintf("REGRESSED  %s", e.Program))
		case !p.Passed && e.Passed:
			lines = append(lines, fmt.Sprintf("FIXED      %s", e.Program))
		case p.Cycles != e.Cycles:
			lines = append(lines, fmt.Sprintf("CYCLES     %s: %d -> %d", e.Program, p.Cycles, e.Cycles))
		}
	}
	return lines
}

// disasm command
func disasmCmd() *cobra.Command {
	org := hexUint16(cpm.TPA)
	var start hexUint16
	var count int

	cmd := &cobra.Command{
		Use:   "disasm [file]",
		Short: "Disassemble a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem := memory.NewFlat()
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := mem.Load(uint16(org), image); err != nil {
				return err
			}
			from := uint16(org)
			if cmd.Flags().Changed("start") {
				from = uint16(start)
			}
			end := int(org) + len(image)
			return disassemble(os.Stdout, mem, from, end, count)
		},
	}
	cmd.Flags().Var(&org, "org", "Load address of the image (hex)")
	cmd.Flags().Var(&start, "start", "First address to disassemble (hex, default --org)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of instructions (0 = to end of image)")
	return cmd
}

// disassemble lists instructions from pc up to end (exclusive) or count
// instructions, whichever comes first.
func disassemble(w io.Writer, mem cpu.Memory, pc uint16, end, count int) error {
	for n := 0; int(pc) < end && (count <= 0 || n < count); n++ {
		in, err := cpu.Fetch(mem, pc)
		if err != nil {
			return fmt.Errorf("%04Xh: %w", pc, err)
		}
		var hex strings.Builder
		for i := 0; i < in.Size; i++ {
			fmt.Fprintf(&hex, "%02X ", mem.Read(pc+uint16(i)))
		}
		fmt.Fprintf(w, "%04X  %-12s %s\n", pc, hex.String(), inst.Disassemble(in))
		next := int(pc) + in.Size
		if next > 0xFFFF {
			break
		}
		pc = uint16(next)
	}
	return nil
}

// exec command
func execCmd() *cobra.Command {
	var maxCycles int64

	cmd := &cobra.Command{
		Use:   "exec [instructions]",
		Short: "Assemble and run a ':'-separated instruction sequence from address 0",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			seq, err := inst.ParseSeq(input)
			if err != nil {
				return fmt.Errorf("failed to parse: %w", err)
			}
			code, err := inst.Assemble(input)
			if err != nil {
				return err
			}
			mem := memory.NewFlat()
			if err := mem.Load(0, code); err != nil {
				return err
			}
			m := machine.New(mem, nil, machine.Config{})
			end := uint16(len(code))
			st, err := m.Run(func() bool { return m.State.PC >= end }, maxCycles)
			if err != nil {
				return err
			}
			fmt.Printf("Code: % X (%d bytes, %d cycles straight-line)\n", code, len(code), inst.SeqCycles(seq))
			fmt.Printf("Ran %d instructions, %d cycles\n", st.Instructions, st.Cycles)
			fmt.Print(formatState(m.State))
			return nil
		},
	}
	cmd.Flags().Int64Var(&maxCycles, "max-cycles", 1_000_000, "Cycle limit")
	return cmd
}

// formatState prints the registers and flags.
func formatState(s *cpu.State) string {
	flags := []struct {
		name string
		on   bool
	}{
		{"S", s.Sign}, {"Z", s.Zero}, {"AC", s.AuxCarry}, {"P", s.Parity}, {"C", s.Carry},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "A=%02X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X\n",
		s.A, s.BC(), s.DE(), s.HL(), s.SP, s.PC)
	b.WriteString("Flags:")
	for _, f := range flags {
		if f.on {
			b.WriteString(" " + f.name)
		} else {
			b.WriteString(" -")
		}
	}
	fmt.Fprintf(&b, " (%02X)", s.Flags.Pack())
	if s.Halted {
		b.WriteString(" HALTED")
	}
	b.WriteString("\n")
	return b.String()
}
