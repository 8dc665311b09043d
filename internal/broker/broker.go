package broker

import (
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/sandia-minimega/wldbg/internal/loop"
	"github.com/sandia-minimega/wldbg/internal/pass"
	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/dbglog"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// PipelineFactory builds a fresh per-connection pass pipeline, typically
// one whose tail is a new instance of the interactive pass bound to conn.
type PipelineFactory func(conn *Connection) (*pass.Pipeline, error)

// Broker owns the live connection list (spec.md's "Debugger state
// singleton" minus the event loop itself, which it shares with the rest
// of the program) and the single dispatch loop every message passes
// through.
type Broker struct {
	registry    *wlproto.Registry
	loop        *loop.Loop
	newPipeline PipelineFactory

	mu    sync.Mutex
	conns map[string]*Connection
}

func New(reg *wlproto.Registry, lp *loop.Loop, newPipeline PipelineFactory) *Broker {
	return &Broker{
		registry:    reg,
		loop:        lp,
		newPipeline: newPipeline,
		conns:       make(map[string]*Connection),
	}
}

// Connections returns a snapshot of the currently live connections.
func (b *Broker) Connections() []*Connection {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Connection, 0, len(b.conns))
	for _, c := range b.conns {
		out = append(out, c)
	}
	return out
}

// Pair creates a Connection from an already-accepted client socket and an
// already-dialed server socket, registers it, and starts its two
// forwarding goroutines (one per direction). It returns once the
// connection is registered; forwarding continues in the background.
func (b *Broker) Pair(client, server *net.UnixConn, meta ClientMeta) (*Connection, error) {
	conn := newConnection(client, server, b.registry, meta)

	pipeline, err := b.newPipeline(conn)
	if err != nil {
		client.Close()
		server.Close()
		return nil, fmt.Errorf("broker: building pipeline: %w", err)
	}
	conn.Pipeline = pipeline

	b.mu.Lock()
	b.conns[conn.ID()] = conn
	b.mu.Unlock()

	dbglog.Infoln("broker: new connection", conn.ID(), "pid", meta.PID, meta.Path)

	go b.forward(conn, wire.ClientToServer, conn.Client, conn.Server)
	go b.forward(conn, wire.ServerToClient, conn.Server, conn.Client)

	return conn, nil
}

// forward is the per-direction reader goroutine described in SPEC_FULL.md
// §5: it blocks on exactly one complete message, hands it to the loop for
// resolution/dispatch/writing, and does not read the next message until
// that completes.
func (b *Broker) forward(conn *Connection, dir wire.Direction, from, to *net.UnixConn) {
	r := wire.NewReader(from, dir, conn)

	for {
		msg, err := r.ReadMessage()
		if err != nil {
			b.teardown(conn, err)
			return
		}

		// Protocol error (spec.md §7): a malformed header closes the
		// connection rather than being handed to the object resolver or
		// any pass.
		if verr := msg.Validate(); verr != nil {
			b.teardown(conn, fmt.Errorf("broker: %w", verr))
			return
		}

		var teardownErr error
		b.loop.Submit(func() {
			conn.bump(dir)

			if uerr := conn.Objects.Update(msg); uerr != nil {
				dbglog.Warnln("broker:", conn.ID(), "object table update failed:", uerr)
			}

			forward, derr := conn.Pipeline.Dispatch(msg)
			if derr != nil {
				dbglog.Errorln("broker:", conn.ID(), "pass pipeline error:", derr)
				return
			}
			if !forward {
				return
			}

			// A synchronous, blocking write here is what gives the
			// broker its backpressure: the loop (and therefore this
			// reader goroutine, parked inside Submit) does not move on
			// to the next message until the peer's socket has accepted
			// this one.
			if werr := wire.WriteMessage(to, msg); werr != nil {
				teardownErr = werr
			}
			// The peer now holds its own copy of a passed fd; close ours
			// so forwarded descriptors do not leak.
			if msg.FD != wire.NoFD {
				syscall.Close(msg.FD)
			}
		})

		if teardownErr != nil {
			b.teardown(conn, teardownErr)
			return
		}
	}
}

// teardown closes both halves of conn, optionally signals the client
// process, and removes conn from the live set. It is idempotent: the
// first of the two forwarding goroutines to see an error wins, and the
// map delete makes the second's call a no-op find.
func (b *Broker) teardown(conn *Connection, cause error) {
	b.mu.Lock()
	_, live := b.conns[conn.ID()]
	delete(b.conns, conn.ID())
	b.mu.Unlock()

	if !live {
		return
	}

	dbglog.Infoln("broker: closing connection", conn.ID(), "cause:", cause)

	conn.Client.Close()
	conn.Server.Close()
	conn.Pipeline.Shutdown()

	if conn.QuitRequested && conn.Meta.PID > 0 {
		if perr := syscall.Kill(conn.Meta.PID, syscall.SIGTERM); perr != nil {
			dbglog.Warnln("broker: signalling client pid", conn.Meta.PID, "failed:", perr)
		}
	}
}

// Listen opens a UNIX listening socket at path, removing any stale socket
// file left behind by a previous run first.
func Listen(path string) (*net.UnixListener, error) {
	_ = os.Remove(path)
	addr := &net.UnixAddr{Name: path, Net: "unix"}
	return net.ListenUnix("unix", addr)
}
