// Package broker pairs a client socket and a server socket, shuttles every
// intercepted message between them through a connection's pass pipeline,
// and manages connection lifecycle -- spec.md §4.D.
package broker

import (
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/sandia-minimega/wldbg/internal/objtable"
	"github.com/sandia-minimega/wldbg/internal/pass"
	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// Stats holds the per-direction message counters spec.md §3 requires on
// every Connection.
type Stats struct {
	ClientToServer uint64
	ServerToClient uint64
}

// ClientMeta is the client program metadata spec.md §3 requires a
// Connection to carry: path, argv, and pid, as resolved from the peer
// credentials or (in server mode) from the accepted socket's SO_PEERCRED.
type ClientMeta struct {
	Path string
	Argv []string
	PID  int
}

// Connection is one paired (client socket, server socket) session: its
// per-direction stats, its resolved-objects table, its own pass pipeline,
// and the client program metadata. It implements wire.ConnRef so messages
// can carry a back-reference without internal/wire depending on this
// package.
type Connection struct {
	id string

	Client *net.UnixConn
	Server *net.UnixConn

	Objects  *objtable.Table
	Pipeline *pass.Pipeline
	Meta     ClientMeta

	mu    sync.Mutex
	stats Stats

	// QuitRequested is set by the interactive pass's "quit" command when
	// the operator confirms teardown; it controls whether the broker
	// signals the client process on connection close.
	QuitRequested bool
}

// newConnection constructs a Connection with a fresh uuid identifier and
// an object table seeded with the display singleton.
func newConnection(client, server *net.UnixConn, reg *wlproto.Registry, meta ClientMeta) *Connection {
	return &Connection{
		id:      uuid.NewString(),
		Client:  client,
		Server:  server,
		Objects: objtable.New(reg),
		Meta:    meta,
	}
}

// ID returns the connection's cosmetic, process-unique identifier.
func (c *Connection) ID() string { return c.id }

// Stats returns a snapshot of the connection's message counters.
func (c *Connection) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Connection) bump(dir wire.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dir == wire.ClientToServer {
		c.stats.ClientToServer++
	} else {
		c.stats.ServerToClient++
	}
}
