package interactive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandia-minimega/wldbg/internal/broker"
	"github.com/sandia-minimega/wldbg/internal/pass"
	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// Options configures one Interactive instance. Callers (cmd/wldbg's
// pipeline factory) build one per connection from the loaded Config.
type Options struct {
	// SkipFirstQuery disables spec.md §4.G's "stop on the very first
	// message" rule.
	SkipFirstQuery bool

	// Editor names the message editor used when "edit" is given no editor
	// argument, taking precedence over EditorEnv.
	Editor string
	// EditorEnv names the environment variable consulted when no
	// explicit editor is given to "edit". Defaults to "EDITOR".
	EditorEnv string

	// Out is where the REPL prints message traffic and command output.
	// Defaults to os.Stdout.
	Out io.Writer
}

// Interactive is the terminal pass in every connection's pipeline
// (spec.md §4.G): it evaluates breakpoints and filters on every message
// and, on a stop, blocks the owning reader goroutine inside a REPL.
//
// All of its mutable state (breakpoints, filters, step flag, REPL
// history) is touched only from within the dispatch loop's single
// goroutine -- ClientPass/ServerPass run there, and so does the REPL --
// so, per spec.md §5, no locking is needed here.
type Interactive struct {
	conn *broker.Connection
	reg  *wlproto.Registry
	opts Options
	out  io.Writer

	breakpoints []*Breakpoint
	nextBreakID int

	filters      []*Filter
	nextFilterID int

	singleStep bool
	quitting   bool

	currentMsg *wire.Message
	lastLine   string

	line *liner.State
}

// New returns an Interactive bound to conn, ready to be wrapped in a
// pass.Pipeline as its pinned tail.
func New(conn *broker.Connection, reg *wlproto.Registry, opts Options) *Interactive {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.EditorEnv == "" {
		opts.EditorEnv = "EDITOR"
	}
	return &Interactive{conn: conn, reg: reg, opts: opts, out: opts.Out}
}

func (i *Interactive) Name() string { return "interactive" }

func (i *Interactive) Init(args []string) error { return nil }

func (i *Interactive) Destroy() {
	if i.line != nil {
		i.line.Close()
		i.line = nil
	}
}

func (i *Interactive) Help() string {
	return "the interactive pass: breakpoints, filters, and the operator REPL"
}

func (i *Interactive) ClientPass(msg *wire.Message) (pass.Decision, error) {
	return i.process(msg), nil
}

func (i *Interactive) ServerPass(msg *wire.Message) (pass.Decision, error) {
	return i.process(msg), nil
}

// SignalBreak is called by the SIGINT monitor (SPEC_FULL.md §5's signal
// coupling translation): since our dispatch loop can't preempt a job
// already running, SIGINT can't interrupt traffic already mid-flight the
// way it could in the original's single callback; instead it arms the
// single-step flag so the very next message on either direction stops.
func (i *Interactive) SignalBreak() {
	i.singleStep = true
}

// process implements spec.md §4.G's stop/filter decision and, on a stop,
// enters the REPL. It always returns a terminal decision, since the
// interactive pass sits at the pipeline's tail.
func (i *Interactive) process(msg *wire.Message) pass.Decision {
	i.currentMsg = msg

	iface := i.conn.Objects.Get(msg.ObjectID())
	name := canonicalName(msg, iface)

	stop := isFirstMessage(i.conn.Stats()) && !i.opts.SkipFirstQuery
	if i.singleStep {
		stop = true
		i.singleStep = false
	}

	var hit *Breakpoint
	for _, b := range i.breakpoints {
		if b.Matches(msg, iface) {
			stop = true
			hit = b
			break
		}
	}

	hide := ShouldHide(i.filters, name)
	if stop {
		hide = false
	}

	if !hide {
		i.printMessage(msg, name, hit)
	}

	if stop {
		i.repl()
	}

	if i.quitting {
		return pass.Drop
	}
	return pass.Stop
}

// isFirstMessage reports whether stats reflects the very first message seen
// on the whole connection, per spec.md §4.G and
// original_source/src/interactive/interactive.c's
// "server_msg_no + client_msg_no == 1" check -- it fires once per
// connection, on whichever direction happens to carry that first message,
// not once per direction.
func isFirstMessage(stats broker.Stats) bool {
	return stats.ClientToServer+stats.ServerToClient == 1
}

func (i *Interactive) printMessage(msg *wire.Message, name string, hit *Breakpoint) {
	marker := " "
	if hit != nil {
		marker = "*"
	}
	fmt.Fprintf(i.out, "%s %s %-28s (%d bytes, fd=%d)\n", marker, msg.Dir, name, len(msg.Data), msg.FD)
}

func (i *Interactive) repl() {
	if i.line == nil {
		i.line = liner.NewLiner()
		i.line.SetCtrlCAborts(true)
		i.line.SetTabCompletionStyle(liner.TabPrints)
		i.line.SetCompleter(i.completer)
	}

	for {
		prompt := fmt.Sprintf("wldbg[%s]> ", shortID(i.conn.ID()))
		line, err := i.line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			return
		}
		if strings.TrimSpace(line) != "" {
			i.line.AppendHistory(line)
		}

		switch i.dispatch(line) {
		case EndQuery:
			return
		case DontMatch:
			fmt.Fprintf(i.out, "unknown command: %q\n", strings.TrimSpace(line))
		case ContinueQuery:
			// loop again
		}

		if i.quitting {
			return
		}
	}
}

func (i *Interactive) completer(line string) []string {
	var out []string
	for _, cmd := range commandTable {
		if strings.HasPrefix(cmd.Long, line) {
			out = append(out, cmd.Long)
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
