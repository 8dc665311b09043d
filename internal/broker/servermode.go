package broker

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDisplayName is used when $WAYLAND_DISPLAY is unset, matching the
// real Wayland compositor's own default.
const DefaultDisplayName = "wayland-0"

// SocketPath resolves the real Wayland socket path per spec.md §6:
// $XDG_RUNTIME_DIR/<name>, where name defaults to "wayland-0" or is taken
// from $WAYLAND_DISPLAY.
func SocketPath() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", fmt.Errorf("broker: XDG_RUNTIME_DIR is not set")
	}
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = DefaultDisplayName
	}
	return filepath.Join(dir, name), nil
}

// aside is the suffix applied to the real socket (and its lock file) while
// wldbg impersonates the compositor on the original name.
const aside = ".wldbg-real"

// EnterServerMode renames the real compositor socket at path (and its
// ".lock" companion, if present) aside so wldbg can bind path itself, and
// returns the renamed real-socket path plus a restore function that moves
// both files back to their original names. restore is safe to call once,
// on shutdown, even after a partial failure.
func EnterServerMode(path string) (realPath string, restore func() error, err error) {
	realPath = path + aside
	lockPath := path + ".lock"
	realLockPath := lockPath + aside

	if err := os.Rename(path, realPath); err != nil {
		return "", nil, fmt.Errorf("broker: moving real socket aside: %w", err)
	}

	lockMoved := false
	if _, statErr := os.Stat(lockPath); statErr == nil {
		if err := os.Rename(lockPath, realLockPath); err != nil {
			os.Rename(realPath, path) // best-effort undo of the socket rename
			return "", nil, fmt.Errorf("broker: moving real lock file aside: %w", err)
		}
		lockMoved = true
	}

	restore = func() error {
		var firstErr error
		if err := os.Rename(realPath, path); err != nil && firstErr == nil {
			firstErr = err
		}
		if lockMoved {
			if err := os.Rename(realLockPath, lockPath); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	return realPath, restore, nil
}
