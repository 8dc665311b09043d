package interactive

import "strings"

// Result is a command handler's outcome, per spec.md §4.G/§4.H.
type Result int

const (
	ContinueQuery Result = iota // keep prompting
	EndQuery                    // leave the REPL, resume dispatch
	DontMatch                   // unrecognized input
)

// command is one entry in the dispatcher's table: long name (required,
// unique), optional short alias, and a handler. The table is kept sorted
// by Long for the "sorted for future binary search" note in spec.md §9,
// even though lookup here is linear.
type command struct {
	Long    string
	Alias   string
	Summary string
	Handler func(i *Interactive, args string) Result
}

// matchWord reports whether line begins with name followed by a word
// boundary (whitespace or end of line), per spec.md §4.H, and returns the
// remainder with leading whitespace stripped.
func matchWord(line, name string) (rest string, ok bool) {
	if name == "" || !strings.HasPrefix(line, name) {
		return "", false
	}
	tail := line[len(name):]
	if tail != "" && tail[0] != ' ' && tail[0] != '\t' {
		return "", false
	}
	return strings.TrimLeft(tail, " \t"), true
}

// dispatch resolves line's first token against i's command table (by
// long name or short alias) and runs its handler on the remainder. An
// empty line repeats the last non-empty command line.
func (i *Interactive) dispatch(line string) Result {
	line = strings.TrimLeft(line, " \t")

	if line == "" {
		if i.lastLine == "" {
			return DontMatch
		}
		line = i.lastLine
	} else {
		i.lastLine = line
	}

	for _, cmd := range commandTable {
		if rest, ok := matchWord(line, cmd.Long); ok {
			return cmd.Handler(i, rest)
		}
		if rest, ok := matchWord(line, cmd.Alias); ok {
			return cmd.Handler(i, rest)
		}
	}
	return DontMatch
}
