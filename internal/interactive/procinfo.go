package interactive

import (
	"fmt"
	"os"

	proc "github.com/c9s/goprocinfo/linux"
)

// ProcSnapshot is the enrichment `info process` adds beyond the base pid/path/argv spec.md §6 requires: resident memory,
// process state, and thread count, read straight from /proc.
type ProcSnapshot struct {
	PID     int
	Exited  bool
	State   string
	Threads int64
	RSSKB   uint64
}

// readProcSnapshot reads /proc/<pid>/stat and /proc/<pid>/statm for pid.
// A process that has already exited (ENOENT) is reported via Exited,
// never as an error -- spec.md §4.L.
func readProcSnapshot(pid int) (*ProcSnapshot, error) {
	statPath := fmt.Sprintf("/proc/%d/stat", pid)
	if _, err := os.Stat(statPath); os.IsNotExist(err) {
		return &ProcSnapshot{PID: pid, Exited: true}, nil
	}

	stat, err := proc.ReadProcessStat(statPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", statPath, err)
	}

	statm, err := proc.ReadProcessStatm(fmt.Sprintf("/proc/%d/statm", pid))
	if err != nil {
		return nil, fmt.Errorf("reading /proc/%d/statm: %w", pid, err)
	}

	return &ProcSnapshot{
		PID:     pid,
		State:   stat.State,
		Threads: stat.NumThreads,
		RSSKB:   statm.Resident * 4, // pages are 4KB on every realistic target
	}, nil
}

func (s *ProcSnapshot) String() string {
	if s.Exited {
		return fmt.Sprintf("pid %d: process has exited", s.PID)
	}
	return fmt.Sprintf("pid %d: state=%s threads=%d rss=%dKB", s.PID, s.State, s.Threads, s.RSSKB)
}
