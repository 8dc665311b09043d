package dbglog

import (
	"container/ring"
	"fmt"
	"sync"
	"time"
)

// Ring is a bounded, thread-safe log sink that keeps the last N lines in
// memory instead of writing them anywhere. It backs the "history" sink used
// by the interactive pass's "info process" command and the fatal-error
// dump in fatal.go.
type Ring struct {
	size int

	mu sync.Mutex
	r  *ring.Ring
}

func NewRing(size int) *Ring {
	return &Ring{
		r:    ring.New(size),
		size: size,
	}
}

// Println mimics the io.Writer-backed loggers' Output, prefixing the time.
func (l *Ring) Println(v ...interface{}) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	line := now.Format("2006/01/02 15:04:05") + " " + fmt.Sprintln(v...)

	l.r = l.r.Next()
	l.r.Value = line
}

// Dump returns the buffered lines, oldest first.
func (l *Ring) Dump() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]string, 0, l.size)
	l.r.Next().Do(func(v interface{}) {
		if v == nil {
			return
		}
		res = append(res, v.(string))
	})
	return res
}
