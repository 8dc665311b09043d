// Package objtable tracks, per connection, which object id is currently
// bound to which Wayland interface. It is fed by internal/wire.Message
// traffic walking new_id/delete_id arguments against pkg/wlproto's static
// signature tables, and is read by internal/interactive to resolve
// breakpoints and filters stated by interface name.
package objtable

import (
	"fmt"
	"sync"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// Table is the resolved-objects table for one connection: id -> interface.
// It always contains at least {1: wl_display}, the root singleton every
// Wayland connection starts with. Table is safe for concurrent use, though
// in practice it has a single writer (the broker's forwarding goroutines)
// and readers from the interactive pass.
type Table struct {
	reg *wlproto.Registry

	mu      sync.RWMutex
	objects map[uint32]*wlproto.Interface
}

// New returns a Table seeded with the display singleton, resolving new_id
// arguments against reg.
func New(reg *wlproto.Registry) *Table {
	t := &Table{
		reg:     reg,
		objects: make(map[uint32]*wlproto.Interface),
	}
	t.objects[1] = reg.ByName(wlproto.DisplayInterface)
	return t
}

// Get returns the interface bound to id, or nil if id is unbound.
func (t *Table) Get(id uint32) *wlproto.Interface {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.objects[id]
}

// GetByName looks up an interface by name in the underlying registry,
// independent of whether any object is currently bound to it.
func (t *Table) GetByName(name string) *wlproto.Interface {
	return t.reg.ByName(name)
}

// Bind records that id now refers to iface. It returns an error if id is
// already bound: a well-behaved client or server never reuses a live id, so
// a second bind is a protocol violation worth surfacing rather than
// silently overwriting.
func (t *Table) Bind(id uint32, iface *wlproto.Interface) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.objects[id]; ok {
		return fmt.Errorf("objtable: id %d already bound to %s", id, existing.Name)
	}
	t.objects[id] = iface
	return nil
}

// Unbind removes id from the table. Unbinding an id that isn't present is
// a no-op: by the time wl_display.delete_id reaches us the debugger may
// have attached mid-session and missed the original bind.
func (t *Table) Unbind(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.objects, id)
}

// Iterate calls f once per currently bound (id, interface) pair. f must
// not call back into the Table.
func (t *Table) Iterate(f func(id uint32, iface *wlproto.Interface)) {
	t.mu.RLock()
	snapshot := make(map[uint32]*wlproto.Interface, len(t.objects))
	for id, iface := range t.objects {
		snapshot[id] = iface
	}
	t.mu.RUnlock()

	for id, iface := range snapshot {
		f(id, iface)
	}
}

// Update walks msg's arguments against its declared signature (resolved via
// msg.ObjectID()'s current interface and msg.Opcode(), in the direction
// carried by msg.Dir) and binds or unbinds objects as new_id/delete_id
// arguments are found. It is a no-op, returning nil, if the message's
// object id isn't currently bound to a known interface (can't happen for
// wl_display but can for an object the debugger attached after).
func (t *Table) Update(msg *wire.Message) error {
	iface := t.Get(msg.ObjectID())
	if iface == nil {
		return nil
	}

	var decl *wlproto.Message
	if msg.Dir == wire.ClientToServer {
		decl = iface.Request(int(msg.Opcode()))
	} else {
		decl = iface.Event(int(msg.Opcode()))
	}
	if decl == nil {
		return nil
	}

	r := wire.NewArgReader(msg.Args())
	for _, arg := range decl.Args {
		switch arg.Kind {
		case wlproto.ArgInt, wlproto.ArgUint, wlproto.ArgFixed, wlproto.ArgObject:
			if _, err := r.Uint32(); err != nil {
				return err
			}

		case wlproto.ArgString:
			if _, err := r.String(); err != nil {
				return err
			}

		case wlproto.ArgArray:
			if _, err := r.Array(); err != nil {
				return err
			}

		case wlproto.ArgFD:
			// Carried out of band on msg.FD, not in the argument bytes.

		case wlproto.ArgNewID:
			if err := t.bindNewID(arg, r); err != nil {
				return err
			}
		}
	}

	if iface.Name == wlproto.DisplayInterface && decl.Name == "delete_id" && msg.Dir == wire.ServerToClient {
		if len(decl.Args) == 1 {
			r2 := wire.NewArgReader(msg.Args())
			id, err := r2.Uint32()
			if err == nil {
				t.Unbind(id)
			}
		}
	}

	return nil
}

// bindNewID reads one new_id argument off r and binds it. A typed new_id
// (arg.Interface != "") is just the id word; the untyped form used by
// wl_registry.bind carries the interface name and version ahead of the id.
func (t *Table) bindNewID(arg wlproto.Arg, r *wire.ArgReader) error {
	if arg.Interface != "" {
		id, err := r.Uint32()
		if err != nil {
			return err
		}
		return t.Bind(id, t.reg.ByName(arg.Interface))
	}

	name, err := r.String()
	if err != nil {
		return err
	}
	if _, err := r.Uint32(); err != nil { // version
		return err
	}
	id, err := r.Uint32()
	if err != nil {
		return err
	}
	return t.Bind(id, t.reg.ByName(name))
}
