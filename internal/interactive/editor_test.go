package interactive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandia-minimega/wldbg/internal/wire"
)

// writeScript writes an executable shell script to a temp file and
// returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

// TestEditRoundTripNoop grounds testable property #6: editing a message
// with a no-op editor yields byte-identical forwarding.
func TestEditRoundTripNoop(t *testing.T) {
	noop := writeScript(t, "exit 0\n")

	data := make([]byte, 12)
	wire.SetHeader(data, 1, 2)
	copy(data[8:], []byte{9, 9, 9, 9})
	original := append([]byte(nil), data...)

	msg := &wire.Message{Dir: wire.ClientToServer, Data: data, FD: wire.NoFD}
	if err := editMessage(msg, noop, ""); err != nil {
		t.Fatalf("editMessage: %v", err)
	}

	if string(msg.Data) != string(original) {
		t.Fatalf("expected byte-identical round trip, got %v want %v", msg.Data, original)
	}
}

// TestEditTruncation grounds end-to-end scenario F: an editor that
// truncates the message to 8 bytes yields a message of size 8.
func TestEditTruncation(t *testing.T) {
	truncate := writeScript(t, `head -c 8 "$1" > "$1.tmp" && mv "$1.tmp" "$1"`+"\n")

	data := make([]byte, 16)
	wire.SetHeader(data, 1, 2)
	msg := &wire.Message{Dir: wire.ClientToServer, Data: data, FD: wire.NoFD}

	if err := editMessage(msg, truncate, ""); err != nil {
		t.Fatalf("editMessage: %v", err)
	}

	if len(msg.Data) != 8 {
		t.Fatalf("expected 8-byte message after truncation, got %d", len(msg.Data))
	}
	if msg.EncodedSize() != 8 {
		t.Fatalf("expected size field to read back 8, got %d", msg.EncodedSize())
	}
}

func TestEditFailsWithoutEditor(t *testing.T) {
	data := make([]byte, 8)
	wire.SetHeader(data, 1, 0)
	msg := &wire.Message{Dir: wire.ClientToServer, Data: data, FD: wire.NoFD}
	original := append([]byte(nil), data...)

	if err := editMessage(msg, "", ""); err == nil {
		t.Fatal("expected error when no editor is available")
	}
	if string(msg.Data) != string(original) {
		t.Fatal("expected message left unchanged on editor resolution failure")
	}
}
