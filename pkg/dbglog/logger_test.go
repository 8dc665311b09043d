package dbglog

import (
	"strings"
	"testing"
)

func resetLoggers(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		loggers = make(map[string]*logger)
		mu.Unlock()
		history = nil
	})
}

func TestLevelFiltering(t *testing.T) {
	resetLoggers(t)

	r := NewRing(8)
	AddLogger("test", r, WARN, false)

	Debug("should not appear")
	Warn("should appear: %d", 42)

	lines := r.Dump()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line logged at WARN, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "should appear: 42") {
		t.Fatalf("unexpected log line: %q", lines[0])
	}
}

func TestSubstringFilter(t *testing.T) {
	resetLoggers(t)

	r := NewRing(8)
	AddLogger("test", r, DEBUG, false)
	if err := AddFilter("test", "noisy"); err != nil {
		t.Fatal(err)
	}

	Debug("this is noisy output")
	Debug("this one matters")

	lines := r.Dump()
	if len(lines) != 1 || !strings.Contains(lines[0], "this one matters") {
		t.Fatalf("filter did not suppress noisy line: %v", lines)
	}
}

func TestHistoryDump(t *testing.T) {
	resetLoggers(t)

	EnableHistory("history", 4, DEBUG)
	Info("one")
	Info("two")

	lines := History()
	if len(lines) != 2 {
		t.Fatalf("expected 2 history lines, got %d", len(lines))
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error", "fatal"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
