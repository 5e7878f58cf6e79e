// Package report collects diagnostic run results and writes them as JSON.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Entry is the outcome of running one program.
type Entry struct {
	Program      string `json:"program"`
	Passed       bool   `json:"passed"`
	Output       string `json:"output"`
	Error        string `json:"error,omitempty"`
	Instructions int64  `json:"instructions"`
	Cycles       int64  `json:"cycles"`
}

// Table stores entries from concurrent workers.
type Table struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts an entry into the table.
func (t *Table) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Entries returns a copy of all entries, failures first, then by program.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Passed != result[j].Passed {
			return !result[i].Passed
		}
		return result[i].Program < result[j].Program
	})
	return result
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Failed returns the number of entries that did not pass.
func (t *Table) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if !e.Passed {
			n++
		}
	}
	return n
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// ReadJSON reads entries written by WriteJSON.
func ReadJSON(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
