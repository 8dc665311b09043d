package interactive

import (
	"testing"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

func msg(dir wire.Direction, objectID uint32, opcode uint16) *wire.Message {
	data := make([]byte, 8)
	wire.SetHeader(data, objectID, opcode)
	return &wire.Message{Dir: dir, Data: data, FD: wire.NoFD}
}

func TestOnSideBreakpointMatchesDirectionOnly(t *testing.T) {
	b := OnSideBreakpoint(1, wire.ClientToServer)
	if !b.Matches(msg(wire.ClientToServer, 1, 0), nil) {
		t.Fatal("expected match on client->server message")
	}
	if b.Matches(msg(wire.ServerToClient, 1, 0), nil) {
		t.Fatal("expected no match on server->client message")
	}
}

func TestOnIDBreakpointMatchesObjectID(t *testing.T) {
	b := OnIDBreakpoint(1, 42)
	if !b.Matches(msg(wire.ClientToServer, 42, 5), nil) {
		t.Fatal("expected match on object id 42")
	}
	if b.Matches(msg(wire.ClientToServer, 43, 5), nil) {
		t.Fatal("expected no match on a different object id")
	}
}

// TestOnOpcodeBreakpointDoesNotCollideAcrossInterfaces grounds end-to-end
// scenario E: "break wl_surface@commit" must not trip on another
// interface's request at the same opcode number.
func TestOnOpcodeBreakpointDoesNotCollideAcrossInterfaces(t *testing.T) {
	reg := wlproto.NewRegistry([]wlproto.Interface{
		{
			Name:     "wl_surface",
			Requests: []wlproto.Message{{Name: "destroy"}, {Name: "commit"}},
		},
		{
			Name:     "wl_pointer",
			Requests: []wlproto.Message{{Name: "set_cursor"}, {Name: "release"}},
		},
	})
	surface := reg.ByName("wl_surface")
	pointer := reg.ByName("wl_pointer")

	b, err := OnOpcodeBreakpoint(1, reg, "wl_surface", "commit")
	if err != nil {
		t.Fatalf("OnOpcodeBreakpoint: %v", err)
	}

	if !b.Matches(msg(wire.ClientToServer, 10, 1), surface) {
		t.Fatal("expected match on wl_surface.commit")
	}

	// Same opcode number (1), different interface ("release"): must not match.
	if b.Matches(msg(wire.ClientToServer, 20, 1), pointer) {
		t.Fatal("breakpoint must not match another interface at the same opcode number")
	}
}

func TestOnOpcodeBreakpointEventsWinOnNameCollision(t *testing.T) {
	reg := wlproto.NewRegistry([]wlproto.Interface{
		{
			Name: "dual",
			Requests: []wlproto.Message{
				{Name: "thing"},
			},
			Events: []wlproto.Message{
				{Name: "thing"},
			},
		},
	})

	b, err := OnOpcodeBreakpoint(1, reg, "dual", "thing")
	if err != nil {
		t.Fatalf("OnOpcodeBreakpoint: %v", err)
	}
	if !b.IsEvent {
		t.Fatal("expected the event to win on a name collision between request and event")
	}
}

func TestOnOpcodeBreakpointRejectsUnknownInterfaceOrMessage(t *testing.T) {
	reg := wlproto.NewCoreRegistry()
	if _, err := OnOpcodeBreakpoint(1, reg, "no_such_interface", "x"); err == nil {
		t.Fatal("expected error for unknown interface")
	}
	if _, err := OnOpcodeBreakpoint(1, reg, "wl_surface", "no_such_message"); err == nil {
		t.Fatal("expected error for unknown message name")
	}
}
