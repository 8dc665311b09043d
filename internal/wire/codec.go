package wire

import (
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// ErrConnectionClosed is returned by Reader.ReadMessage when the peer has
// closed its end cleanly (EOF before any partial message was buffered).
var ErrConnectionClosed = errors.New("wire: connection closed")

const maxOOB = 64 // room for several SCM_RIGHTS fds

// Reader accumulates bytes and ancillary fds off a *net.UnixConn and slices
// out whole Wayland messages. Wayland messages don't arrive one syscall per
// message on a stream socket, so reads are buffered and a fd received
// alongside some bytes is attached to the next message sliced out, one fd
// per message -- this is the one simplification this codec makes relative
// to a production implementation, which would track fd offsets precisely.
type Reader struct {
	conn    *net.UnixConn
	dir     Direction
	connRef ConnRef

	buf     []byte
	pendFDs []int
}

func NewReader(conn *net.UnixConn, dir Direction, ref ConnRef) *Reader {
	return &Reader{conn: conn, dir: dir, connRef: ref}
}

// ReadMessage blocks until one complete message is available and returns
// it. It never returns a partial message.
func (r *Reader) ReadMessage() (*Message, error) {
	for {
		if msg, ok := r.tryExtract(); ok {
			return msg, nil
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) fill() error {
	scratch := make([]byte, 4096)
	oob := make([]byte, maxOOB)

	n, oobn, _, _, err := r.conn.ReadMsgUnix(scratch, oob)
	if n == 0 && err != nil {
		if err == io.EOF {
			return ErrConnectionClosed
		}
		return fmt.Errorf("wire: read: %w", err)
	}

	r.buf = append(r.buf, scratch[:n]...)

	if oobn > 0 {
		fds, ferr := parseFDs(oob[:oobn])
		if ferr != nil {
			return fmt.Errorf("wire: parsing ancillary data: %w", ferr)
		}
		r.pendFDs = append(r.pendFDs, fds...)
	}

	if n == 0 && err == io.EOF {
		return ErrConnectionClosed
	}
	return nil
}

func (r *Reader) tryExtract() (*Message, bool) {
	if len(r.buf) < 8 {
		return nil, false
	}

	size := int(le32(r.buf[4:8]) >> 16)
	if size < 8 || size%4 != 0 {
		// Can't size this frame; hand back the whole buffer as one message
		// so the caller's Validate sees it and reports the protocol error,
		// instead of spinning forever waiting for a size that never fits.
		size = len(r.buf)
	}
	if len(r.buf) < size {
		return nil, false
	}

	data := make([]byte, size)
	copy(data, r.buf[:size])
	r.buf = r.buf[size:]

	fd := NoFD
	if len(r.pendFDs) > 0 {
		fd = r.pendFDs[0]
		r.pendFDs = r.pendFDs[1:]
	}

	return &Message{Dir: r.dir, Data: data, FD: fd, Conn: r.connRef}, true
}

func parseFDs(oob []byte) ([]int, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, err
	}

	var fds []int
	for _, scm := range scms {
		f, err := unix.ParseUnixRights(&scm)
		if err != nil {
			continue
		}
		fds = append(fds, f...)
	}
	return fds, nil
}

// WriteMessage writes msg in full, retrying on partial writes, and sends
// its ancillary fd (if any) alongside the first chunk.
func WriteMessage(conn *net.UnixConn, msg *Message) error {
	data := msg.Data
	var oob []byte
	if msg.FD != NoFD {
		oob = unix.UnixRights(msg.FD)
	}

	for len(data) > 0 {
		n, _, err := conn.WriteMsgUnix(data, oob, nil)
		if err != nil {
			return fmt.Errorf("wire: write: %w", err)
		}
		data = data[n:]
		oob = nil // only the first send carries the fds
	}
	return nil
}
