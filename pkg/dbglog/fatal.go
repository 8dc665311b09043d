package dbglog

import (
	"fmt"
	"os"
)

var history *Ring

// EnableHistory installs an in-memory ring-buffer sink that keeps the last
// size lines logged at level or above, independent of any file/stderr
// sinks. Fatal dumps it to stderr before exiting, so recent context survives
// even if the real log sinks were buffered or already torn down.
func EnableHistory(name string, size int, level Level) {
	history = NewRing(size)
	AddLogger(name, history, level, false)
}

// History returns the buffered lines from the ring sink installed by
// EnableHistory, oldest first. Returns nil if no history sink is installed.
func History() []string {
	if history == nil {
		return nil
	}
	return history.Dump()
}

func Fatal(format string, arg ...interface{}) {
	dispatch(FATAL, "", format, arg...)
	dumpHistory()
	os.Exit(1)
}

func Fatalln(arg ...interface{}) {
	dispatchln(FATAL, "", arg...)
	dumpHistory()
	os.Exit(1)
}

func dumpHistory() {
	lines := History()
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "-- recent log history --")
	for _, l := range lines {
		fmt.Fprint(os.Stderr, l)
	}
}
