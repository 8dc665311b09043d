package objtable

import (
	"testing"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

type fakeConn string

func (f fakeConn) ID() string { return string(f) }

func newTestTable() *Table {
	return New(wlproto.NewCoreRegistry())
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func request(objectID uint32, opcode uint16, body []byte) *wire.Message {
	data := make([]byte, 8+len(body))
	copy(data[8:], body)
	wire.SetHeader(data, objectID, opcode)
	return &wire.Message{Dir: wire.ClientToServer, Data: data, FD: wire.NoFD, Conn: fakeConn("c")}
}

func event(objectID uint32, opcode uint16, body []byte) *wire.Message {
	data := make([]byte, 8+len(body))
	copy(data[8:], body)
	wire.SetHeader(data, objectID, opcode)
	return &wire.Message{Dir: wire.ServerToClient, Data: data, FD: wire.NoFD, Conn: fakeConn("c")}
}

func TestNewTableHasDisplaySingleton(t *testing.T) {
	tbl := newTestTable()
	iface := tbl.Get(1)
	if iface == nil || iface.Name != wlproto.DisplayInterface {
		t.Fatalf("expected id 1 bound to %s, got %v", wlproto.DisplayInterface, iface)
	}
}

// TestGetRegistryBindsObject covers end-to-end scenario A: a
// wl_display.get_registry(new_id=2) request must leave the table with
// {1: wl_display, 2: wl_registry}.
func TestGetRegistryBindsObject(t *testing.T) {
	tbl := newTestTable()

	msg := request(1, 1, le32(2)) // wl_display.get_registry, opcode 1
	if err := tbl.Update(msg); err != nil {
		t.Fatalf("update: %v", err)
	}

	iface := tbl.Get(2)
	if iface == nil || iface.Name != "wl_registry" {
		t.Fatalf("expected id 2 bound to wl_registry, got %v", iface)
	}
}

func TestRegistryBindUntypedNewID(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.Update(request(1, 1, le32(2))); err != nil {
		t.Fatalf("get_registry: %v", err)
	}

	// wl_registry.bind(name=0, interface="wl_compositor", version=4, id=3)
	name := "wl_compositor"
	var body []byte
	body = append(body, le32(0)...) // name
	strLen := uint32(len(name) + 1)
	body = append(body, le32(strLen)...)
	padded := make([]byte, pad4(int(strLen)))
	copy(padded, name)
	body = append(body, padded...)
	body = append(body, le32(4)...) // version
	body = append(body, le32(3)...) // new_id

	if err := tbl.Update(request(2, 0, body)); err != nil {
		t.Fatalf("bind: %v", err)
	}

	iface := tbl.Get(3)
	if iface == nil || iface.Name != "wl_compositor" {
		t.Fatalf("expected id 3 bound to wl_compositor, got %v", iface)
	}
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func TestDeleteIDUnbinds(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.Update(request(1, 1, le32(2))); err != nil {
		t.Fatalf("get_registry: %v", err)
	}
	if tbl.Get(2) == nil {
		t.Fatal("expected id 2 to be bound before delete_id")
	}

	if err := tbl.Update(event(1, 1, le32(2))); err != nil { // wl_display.delete_id, opcode 1
		t.Fatalf("delete_id: %v", err)
	}

	if tbl.Get(2) != nil {
		t.Fatal("expected id 2 to be unbound after delete_id")
	}
}

func TestBindRejectsReuseOfLiveID(t *testing.T) {
	tbl := newTestTable()
	compositor := tbl.GetByName("wl_compositor")
	if err := tbl.Bind(5, compositor); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if err := tbl.Bind(5, compositor); err == nil {
		t.Fatal("expected error rebinding a live id")
	}
}

func TestUnbindMissingIsNoOp(t *testing.T) {
	tbl := newTestTable()
	tbl.Unbind(999) // must not panic
}

func TestIterateSeesAllBoundObjects(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.Update(request(1, 1, le32(2))); err != nil {
		t.Fatalf("get_registry: %v", err)
	}

	seen := map[uint32]string{}
	tbl.Iterate(func(id uint32, iface *wlproto.Interface) {
		seen[id] = iface.Name
	})

	if seen[1] != "wl_display" || seen[2] != "wl_registry" {
		t.Fatalf("unexpected snapshot: %v", seen)
	}
}

func TestGetByNameResolvesRegistryEntryRegardlessOfBinding(t *testing.T) {
	tbl := newTestTable()
	iface := tbl.GetByName("wl_seat")
	if iface == nil || iface.Name != "wl_seat" {
		t.Fatalf("expected wl_seat from registry, got %v", iface)
	}
}

func TestUpdateUnknownObjectIsNoOp(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.Update(request(42, 0, nil)); err != nil {
		t.Fatalf("expected no error for unbound object id, got %v", err)
	}
}
