// Package loop implements the single-goroutine dispatch loop that stands
// in for the original debugger's epoll+signalfd event loop (spec.md §4.E,
// translated to Go per SPEC_FULL.md §5).
//
// Each monitored source -- a connection's read side, the OS signal channel
// -- runs its own goroutine that blocks on exactly one unit of work (one
// wire message, one signal) at a time, then hands it to the loop via
// Submit and waits for the loop to finish processing it before reading the
// next one. That rendezvous is what reproduces "exactly one callback runs
// at a time" and "no callback is preempted" without an epoll syscall.
package loop

import (
	"os"
	"os/signal"
	"sync"
)

// Loop is the single consumer of posted work. It has no knowledge of
// sockets or signals; it only runs closures handed to it by Submit, one at
// a time, in the order they arrive.
type Loop struct {
	work chan func()

	mu      sync.Mutex
	exit    bool
	lastErr error
}

// New returns a Loop ready to Run. queueLen bounds how many posting
// goroutines can be blocked waiting for the loop to reach their item;
// since Submit blocks until its own job has run, this is really just the
// number of sources that can have work in flight simultaneously, not a
// buffer that lets the loop fall behind.
func New(queueLen int) *Loop {
	if queueLen < 1 {
		queueLen = 1
	}
	return &Loop{work: make(chan func(), queueLen)}
}

// Submit posts job to the loop and blocks until the loop has run it to
// completion. Safe to call from any goroutine except the loop's own:
// Submit from inside a running job deadlocks.
func (l *Loop) Submit(job func()) {
	done := make(chan struct{})
	l.work <- func() {
		job()
		close(done)
	}
	<-done
}

// Run drains posted work one job at a time until Exit is called (or the
// work channel is closed by Close), at which point it returns. Run must
// be called from exactly one goroutine.
func (l *Loop) Run() {
	for job := range l.work {
		job()
		if l.shouldExit() {
			return
		}
	}
}

// Exit requests that Run return. Run checks the request after each job, so
// it returns once the running job completes, or, if no job is running,
// after the next job it runs. err, if non-nil, is recorded as the loop's terminal error,
// matching spec.md §4.E's distinct exit/error flags.
func (l *Loop) Exit(err error) {
	l.mu.Lock()
	l.exit = true
	l.lastErr = err
	l.mu.Unlock()
}

// Err returns the error passed to Exit, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Loop) shouldExit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exit
}

// Close stops accepting new work; Run's range over the channel ends once
// any jobs already queued have drained. Monitors should stop posting
// before calling Close.
func (l *Loop) Close() {
	close(l.work)
}

// WatchSignals spawns a goroutine that relays sig, sigs... through the
// loop: each received signal is posted as a Submit'd job calling handler,
// so the handler runs with the same "exactly one callback at a time"
// guarantee as message dispatch. It stops when stop is closed.
func (l *Loop) WatchSignals(stop <-chan struct{}, handler func(os.Signal), sig os.Signal, sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, append([]os.Signal{sig}, sigs...)...)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case s := <-ch:
				l.Submit(func() { handler(s) })
			case <-stop:
				return
			}
		}
	}()
}
