// Package interactive implements the interactive pass: the breakpoint and
// filter evaluator, the message-editing flow, and the REPL that the
// debugger drops into on a stop -- spec.md §4.G/§4.H/§4.I.
package interactive

import (
	"fmt"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// Kind discriminates a Breakpoint's predicate. spec.md §9 suggests
// replacing the original's function-pointer-plus-datum-union encoding
// with a tagged variant; this is that variant.
type Kind int

const (
	OnSide Kind = iota
	OnID
	OnOpcode
)

// Breakpoint is one operator-installed stop condition. Only the fields
// relevant to Kind are meaningful; Matches ignores the rest.
type Breakpoint struct {
	ID          int
	Kind        Kind
	Description string

	Side wire.Direction // OnSide

	ObjectID uint32 // OnID

	Interface string // OnOpcode
	Message   string
	Opcode    int
	IsEvent   bool // events win over requests on a name collision (spec.md §9)
}

// OnSideBreakpoint creates a breakpoint that matches every message
// travelling in dir ("break server" / "break client").
func OnSideBreakpoint(id int, dir wire.Direction) *Breakpoint {
	return &Breakpoint{
		ID:          id,
		Kind:        OnSide,
		Side:        dir,
		Description: fmt.Sprintf("break on every %s message", dir),
	}
}

// OnIDBreakpoint creates a breakpoint that matches any message whose
// object id equals objectID ("break id <N>").
func OnIDBreakpoint(id int, objectID uint32) *Breakpoint {
	return &Breakpoint{
		ID:          id,
		Kind:        OnID,
		ObjectID:    objectID,
		Description: fmt.Sprintf("break on object id %d", objectID),
	}
}

// OnOpcodeBreakpoint resolves "<interface>@<message-name>" against reg and
// creates a by-name breakpoint. Per spec.md §4.G/§9, requests are scanned
// first, then events; if the same name exists in both tables the events
// entry wins. An unknown interface or unknown message name is rejected.
func OnOpcodeBreakpoint(id int, reg *wlproto.Registry, ifaceName, msgName string) (*Breakpoint, error) {
	iface := reg.ByName(ifaceName)
	if iface == nil {
		return nil, fmt.Errorf("unknown interface %q", ifaceName)
	}

	opcode, decl := iface.FindRequest(msgName)
	isEvent := false
	if eopcode, edecl := iface.FindEvent(msgName); edecl != nil {
		opcode, decl, isEvent = eopcode, edecl, true
	}
	if decl == nil {
		return nil, fmt.Errorf("unknown message %q on interface %q", msgName, ifaceName)
	}

	kindWord := "request"
	if isEvent {
		kindWord = "event"
	}
	return &Breakpoint{
		ID:          id,
		Kind:        OnOpcode,
		Interface:   ifaceName,
		Message:     msgName,
		Opcode:      opcode,
		IsEvent:     isEvent,
		Description: fmt.Sprintf("break on %s@%s (%s)", ifaceName, msgName, kindWord),
	}, nil
}

// Matches reports whether msg, whose object id is currently bound to
// iface (nil if unresolved), trips b. OnOpcode matching is exact on
// interface name, message direction, and opcode, so a breakpoint on
// "wl_surface@commit" never fires for a same-numbered opcode on another
// interface (spec.md end-to-end scenario E).
func (b *Breakpoint) Matches(msg *wire.Message, iface *wlproto.Interface) bool {
	switch b.Kind {
	case OnSide:
		return msg.Dir == b.Side
	case OnID:
		return msg.ObjectID() == b.ObjectID
	case OnOpcode:
		if iface == nil || iface.Name != b.Interface {
			return false
		}
		if int(msg.Opcode()) != b.Opcode {
			return false
		}
		wantDir := wire.ClientToServer
		if b.IsEvent {
			wantDir = wire.ServerToClient
		}
		return msg.Dir == wantDir
	default:
		return false
	}
}
