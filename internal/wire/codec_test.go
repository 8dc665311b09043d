package wire

import (
	"bytes"
	"net"
	"os"
	"testing"
)

type fakeConn string

func (f fakeConn) ID() string { return string(f) }

func socketpair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()

	a, b, err := socketPairFDs()
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return a, b
}

func makeMessage(objectID uint32, opcode uint16, body []byte) []byte {
	data := make([]byte, 8+len(body))
	copy(data[8:], body)
	SetHeader(data, objectID, opcode)
	return data
}

func TestWriteReadRoundTrip(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	want := makeMessage(1, 1, []byte{2, 0, 0, 0})

	w := &Message{Dir: ClientToServer, Data: want, FD: NoFD, Conn: fakeConn("c")}
	if err := WriteMessage(client, w); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(server, ClientToServer, fakeConn("c"))
	got, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !bytes.Equal(got.Data, want) {
		t.Fatalf("round-trip mismatch: got %v want %v", got.Data, want)
	}
	if got.ObjectID() != 1 || got.Opcode() != 1 {
		t.Fatalf("unexpected header: id=%d opcode=%d", got.ObjectID(), got.Opcode())
	}
}

func TestReadMessageSplitAcrossWrites(t *testing.T) {
	client, server := socketpair(t)
	defer client.Close()
	defer server.Close()

	full := makeMessage(2, 3, make([]byte, 16))

	go func() {
		// Write the header and the body as two separate sends to force
		// the reader to buffer and loop.
		w1 := &Message{Dir: ClientToServer, Data: full[:8], FD: NoFD, Conn: fakeConn("c")}
		WriteMessage(client, w1)
		w2 := &Message{Dir: ClientToServer, Data: full[8:], FD: NoFD, Conn: fakeConn("c")}
		WriteMessage(client, w2)
	}()

	r := NewReader(server, ClientToServer, fakeConn("c"))
	got, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got.Data, full) {
		t.Fatalf("split-write round trip mismatch: got %d bytes want %d", len(got.Data), len(full))
	}
}

func TestValidateRejectsShortAndMisaligned(t *testing.T) {
	short := &Message{Data: []byte{1, 2, 3}}
	if err := short.Validate(); err == nil {
		t.Fatal("expected error for short message")
	}

	misaligned := &Message{Data: make([]byte, 9)}
	if err := misaligned.Validate(); err == nil {
		t.Fatal("expected error for misaligned message")
	}

	good := &Message{Data: makeMessage(1, 0, nil)}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error for valid message: %v", err)
	}

	zeroID := &Message{Data: makeMessage(0, 0, nil)}
	if err := zeroID.Validate(); err == nil {
		t.Fatal("expected error for zero object id")
	}
}

func TestPeerCloseReturnsErrConnectionClosed(t *testing.T) {
	client, server := socketpair(t)
	defer server.Close()

	client.Close()

	r := NewReader(server, ClientToServer, fakeConn("c"))
	_, err := r.ReadMessage()
	if err != ErrConnectionClosed {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
}

// socketPairFDs creates a connected pair of *net.UnixConn using
// socketpair(2) so tests can exercise ReadMsgUnix/WriteMsgUnix exactly as
// production code does, without a filesystem-backed socket.
func socketPairFDs() (*net.UnixConn, *net.UnixConn, error) {
	fds, err := unixSocketpair()
	if err != nil {
		return nil, nil, err
	}

	f1 := os.NewFile(uintptr(fds[0]), "sp0")
	f2 := os.NewFile(uintptr(fds[1]), "sp1")

	c1, err1 := net.FileConn(f1)
	f1.Close()
	if err1 != nil {
		f2.Close()
		return nil, nil, err1
	}

	c2, err2 := net.FileConn(f2)
	f2.Close()
	if err2 != nil {
		c1.Close()
		return nil, nil, err2
	}

	return c1.(*net.UnixConn), c2.(*net.UnixConn), nil
}
