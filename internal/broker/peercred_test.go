package broker

import (
	"os"
	"testing"
)

func TestResolveClientMetaReportsOwnPID(t *testing.T) {
	a, b := unixSocketpair(t)
	defer a.Close()
	defer b.Close()

	meta, err := ResolveClientMeta(a)
	if err != nil {
		t.Fatalf("ResolveClientMeta: %v", err)
	}

	// Both ends of a socketpair belong to this same test process.
	if meta.PID != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), meta.PID)
	}
	if len(meta.Argv) == 0 {
		t.Fatalf("expected a non-empty argv for the test process, got %v", meta.Argv)
	}
}
