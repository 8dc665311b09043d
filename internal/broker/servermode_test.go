package broker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSocketPathUsesEnvironment(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "wayland-2")

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if want := "/run/user/1000/wayland-2"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSocketPathDefaultsDisplayName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if want := "/run/user/1000/" + DefaultDisplayName; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := SocketPath(); err == nil {
		t.Fatal("expected error when XDG_RUNTIME_DIR is unset")
	}
}

func TestEnterServerModeRenamesAndRestores(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wayland-0")
	lockPath := path + ".lock"

	if err := os.WriteFile(path, []byte("socket-placeholder"), 0o600); err != nil {
		t.Fatalf("seed socket file: %v", err)
	}
	if err := os.WriteFile(lockPath, []byte("lock"), 0o600); err != nil {
		t.Fatalf("seed lock file: %v", err)
	}

	realPath, restore, err := EnterServerMode(path)
	if err != nil {
		t.Fatalf("EnterServerMode: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected original path to be moved aside, stat err: %v", err)
	}
	if _, err := os.Stat(realPath); err != nil {
		t.Fatalf("expected renamed real socket to exist: %v", err)
	}

	if err := restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected original path restored: %v", err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Fatalf("expected lock file restored: %v", err)
	}
}
