// Package pass implements the ordered pipeline of message transformers
// every forwarded Wayland message runs through: spec.md §4.F.
package pass

import (
	"fmt"
	"sync"

	"github.com/sandia-minimega/wldbg/internal/wire"
)

// Decision is what a pass's hook returns.
//
// Continue walks to the next pass. Stop ends the walk here -- no later
// pass sees the message -- but the message is still forwarded; this is
// what the interactive pass always returns once its REPL releases the
// message, since it sits at the tail and "continue"/"next" at the prompt
// both mean "forward it". Drop also ends the walk, but the message is
// discarded instead of forwarded: for a pass that deliberately discards
// traffic (a deterministic drop-every-Nth-message filter pass, say).
//
// spec.md §4.F's prose describes only two outcomes and says stop means
// "drop (not forwarded)", which cannot be reconciled with §4.G's demand
// that the interactive pass always returns stop yet scenario B's
// "continue resumes" still forwards the message. Splitting stop and drop
// resolves that tension without changing either section's externally
// observable behavior.
type Decision int

const (
	Continue Decision = iota
	Stop
	Drop
)

// Pass is a named pipeline stage. Init/Destroy bracket the pass's
// lifetime; ClientPass/ServerPass are invoked per message in the matching
// direction. Help returns the pass's usage text.
type Pass interface {
	Name() string
	Init(args []string) error
	Destroy()
	ClientPass(msg *wire.Message) (Decision, error)
	ServerPass(msg *wire.Message) (Decision, error)
	Help() string
}

// Factory constructs a fresh Pass instance by name, for "pass add <name>".
type Factory func() Pass

// Pipeline is the ordered list of active passes for one connection. New
// passes are inserted at the head; by spec.md §4.F this means they run
// *first*, since execution order follows the list front-to-back. One pass
// -- conventionally the interactive pass -- is pinned at the tail and is
// never displaced by head insertion.
//
// A Pipeline has a single owner goroutine in practice (the broker's
// forwarding loop calls Client/Server per message, and the interactive
// pass's REPL calls Add/Remove while that same call is in progress), so
// the mutex here guards against the REPL's pass-management commands racing
// a concurrent iteration from the other direction's forwarding goroutine,
// not against genuine unbounded concurrent access.
type Pipeline struct {
	mu        sync.Mutex
	passes    []Pass // index 0 runs first; last element is the pinned tail
	factories map[string]Factory
}

// New returns an empty Pipeline. tail, if non-nil, is installed as the
// permanently-last pass (the interactive pass) before any other pass is
// added; head insertions never move past it.
func New(tail Pass, factories map[string]Factory) (*Pipeline, error) {
	p := &Pipeline{factories: factories}
	if tail != nil {
		if err := tail.Init(nil); err != nil {
			return nil, fmt.Errorf("pass: init tail pass %q: %w", tail.Name(), err)
		}
		p.passes = append(p.passes, tail)
	}
	return p, nil
}

// Add constructs a pass named name via the registered factory, initializes
// it with args, and inserts it at the head of the list (ahead of the
// pinned tail, if any). If Init fails, the pass is discarded and an error
// is returned; the pipeline is left unchanged.
func (p *Pipeline) Add(name string, args []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	factory, ok := p.factories[name]
	if !ok {
		return fmt.Errorf("pass: no such pass %q", name)
	}

	np := factory()
	if err := np.Init(args); err != nil {
		return fmt.Errorf("pass: init %q: %w", name, err)
	}

	p.passes = append([]Pass{np}, p.passes...)
	return nil
}

// Remove destroys and removes the first pass named name. It refuses to
// remove the pinned tail pass.
func (p *Pipeline) Remove(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, ps := range p.passes {
		if ps.Name() != name {
			continue
		}
		if i == len(p.passes)-1 {
			return fmt.Errorf("pass: %q is the pinned tail pass and cannot be removed", name)
		}
		ps.Destroy()
		p.passes = append(p.passes[:i], p.passes[i+1:]...)
		return nil
	}
	return fmt.Errorf("pass: no loaded pass named %q", name)
}

// Tail returns the pinned last pass, or nil if the pipeline has none.
// Used by the signal monitor to reach the interactive pass without this
// package depending on internal/interactive.
func (p *Pipeline) Tail() Pass {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.passes) == 0 {
		return nil
	}
	return p.passes[len(p.passes)-1]
}

// List returns the names of currently loaded passes, in execution order.
func (p *Pipeline) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.passes))
	for i, ps := range p.passes {
		names[i] = ps.Name()
	}
	return names
}

// Loaded returns the names registered as addable via "pass add".
func (p *Pipeline) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.factories))
	for name := range p.factories {
		names = append(names, name)
	}
	return names
}

// Dispatch runs msg through the pipeline in order, calling ClientPass or
// ServerPass depending on msg.Dir, and stops at the first Stop or Drop
// decision (the interactive pass, if present, always returns one of the
// two). It reports whether the message survived to be forwarded.
func (p *Pipeline) Dispatch(msg *wire.Message) (forward bool, err error) {
	p.mu.Lock()
	snapshot := make([]Pass, len(p.passes))
	copy(snapshot, p.passes)
	p.mu.Unlock()

	for _, ps := range snapshot {
		var decision Decision
		var herr error
		if msg.Dir == wire.ClientToServer {
			decision, herr = ps.ClientPass(msg)
		} else {
			decision, herr = ps.ServerPass(msg)
		}
		if herr != nil {
			return false, fmt.Errorf("pass: %q: %w", ps.Name(), herr)
		}
		switch decision {
		case Drop:
			return false, nil
		case Stop:
			return true, nil
		}
	}
	return true, nil
}

// Shutdown destroys every loaded pass in reverse of execution order, as
// spec.md §4.F requires, even if a later Destroy would otherwise run
// first on error paths -- Destroy itself cannot fail here by contract.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.passes) - 1; i >= 0; i-- {
		p.passes[i].Destroy()
	}
	p.passes = nil
}
