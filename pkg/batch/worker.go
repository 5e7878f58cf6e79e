// Package batch runs several CP/M diagnostic programs in parallel, each on
// its own machine, and gathers the results into a report table.
package batch

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oisee/i8080/pkg/cpm"
	"github.com/oisee/i8080/pkg/report"
)

// Config controls a batch run.
type Config struct {
	NumWorkers int   // 0 = NumCPU
	MaxCycles  int64 // per program; 0 = unlimited
	Verbose    bool

	// Pass decides from the console output whether a program that ran to
	// completion passed. Nil means DefaultPass.
	Pass func(output string) bool
}

// DefaultPass accepts any output that does not report an error or failure,
// which is how the common 8080 diagnostics signal a problem.
func DefaultPass(output string) bool {
	up := strings.ToUpper(output)
	return !strings.Contains(up, "ERROR") && !strings.Contains(up, "FAIL")
}

// WorkerPool manages parallel diagnostic runs.
type WorkerPool struct {
	NumWorkers int
	Results    *report.Table
	maxCycles  int64
	pass       func(string) bool
	run        atomic.Int64
	failed     atomic.Int64
}

// NewWorkerPool creates a pool from cfg.
func NewWorkerPool(cfg Config) *WorkerPool {
	n := cfg.NumWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	pass := cfg.Pass
	if pass == nil {
		pass = DefaultPass
	}
	return &WorkerPool{
		NumWorkers: n,
		Results:    report.NewTable(),
		maxCycles:  cfg.MaxCycles,
		pass:       pass,
	}
}

// Stats returns the number of programs run and how many failed.
func (wp *WorkerPool) Stats() (run, failed int64) {
	return wp.run.Load(), wp.failed.Load()
}

// RunTasks distributes program paths across workers.
func (wp *WorkerPool) RunTasks(paths []string, verbose bool) {
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range ch {
				wp.processTask(path, verbose)
			}
		}()
	}
	wg.Wait()
}

// processTask runs one program to completion on a fresh session.
func (wp *WorkerPool) processTask(path string, verbose bool) {
	wp.run.Add(1)
	entry := report.Entry{Program: filepath.Base(path)}

	s, err := cpm.Load(path, cpm.Config{})
	if err == nil {
		var res cpm.Result
		res, err = s.Run(wp.maxCycles)
		entry.Output = res.Output
		entry.Instructions = res.Instructions
		entry.Cycles = res.Cycles
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Passed = wp.pass(entry.Output)
	}
	if !entry.Passed {
		wp.failed.Add(1)
	}
	wp.Results.Add(entry)

	if verbose {
		status := "PASS"
		if !entry.Passed {
			status = "FAIL"
		}
		fmt.Printf("  %s: %s (%d instructions, %d cycles)\n",
			status, entry.Program, entry.Instructions, entry.Cycles)
		if entry.Error != "" {
			fmt.Printf("    %s\n", entry.Error)
		}
	}
}

// Run executes every program in paths and returns the filled table.
func Run(cfg Config, paths []string) *report.Table {
	wp := NewWorkerPool(cfg)
	if cfg.Verbose {
		fmt.Printf("Running %d programs on %d workers\n", len(paths), wp.NumWorkers)
	}
	wp.RunTasks(paths, cfg.Verbose)
	return wp.Results
}
