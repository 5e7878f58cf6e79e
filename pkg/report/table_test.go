package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestTableOrder(t *testing.T) {
	tab := NewTable()
	tab.Add(Entry{Program: "b.com", Passed: true})
	tab.Add(Entry{Program: "c.com", Passed: false, Error: "boom"})
	tab.Add(Entry{Program: "a.com", Passed: true})
	got := tab.Entries()
	want := []string{"c.com", "a.com", "b.com"}
	for i, e := range got {
		if e.Program != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Program, want[i])
		}
	}
	if tab.Len() != 3 || tab.Failed() != 1 {
		t.Errorf("Len=%d Failed=%d", tab.Len(), tab.Failed())
	}
}

func TestTableConcurrentAdd(t *testing.T) {
	tab := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tab.Add(Entry{Program: "x", Passed: true})
		}()
	}
	wg.Wait()
	if tab.Len() != 50 {
		t.Errorf("Len = %d", tab.Len())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := []Entry{
		{Program: "TST8080.COM", Passed: true, Output: "CPU IS OPERATIONAL", Instructions: 651, Cycles: 4924},
		{Program: "BAD.COM", Error: "cpu: pc 0100h: unimplemented opcode: DDh"},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, in); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"program": "TST8080.COM"`) {
		t.Errorf("unexpected JSON:\n%s", buf.String())
	}
	if strings.Count(buf.String(), `"error"`) != 1 {
		t.Errorf("empty errors should be omitted:\n%s", buf.String())
	}
	out, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip: %+v", out)
	}
	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("ReadJSON of bad input should fail")
	}
}
