package interactive

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/sandia-minimega/wldbg/internal/wire"
)

// maxFrameSize bounds how much of the edited file is read back, per
// spec.md §4.I.
const maxFrameSize = 4096

// editMessage implements the message editor flow (spec.md §4.I):
//   1. dump msg's bytes to a fresh 0700 temp file
//   2. resolve an editor (explicit override, else the environment editor var)
//   3. run "<editor> <tempfile>" and wait
//   4. on exit 0, read the file back (up to maxFrameSize) and rewrite msg
//   5. unlink the temp file unconditionally
//
// Any failure leaves msg unchanged and is returned to the caller to report.
func editMessage(msg *wire.Message, override, envEditor string) error {
	f, err := os.CreateTemp("", "wldbg-edit-*")
	if err != nil {
		return fmt.Errorf("edit: creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := f.Chmod(0o700); err != nil {
		f.Close()
		return fmt.Errorf("edit: chmod temp file: %w", err)
	}
	if _, err := f.Write(msg.Data); err != nil {
		f.Close()
		return fmt.Errorf("edit: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("edit: closing temp file: %w", err)
	}

	editor := override
	if editor == "" {
		editor = envEditor
	}
	if editor == "" {
		return fmt.Errorf("edit: no editor given and no editor environment variable set")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("edit: running %s: %w", editor, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("edit: reading back temp file: %w", err)
	}
	if len(edited) > maxFrameSize {
		edited = edited[:maxFrameSize]
	}

	msg.Data = edited
	if len(msg.Data) >= 8 {
		wire.SetHeader(msg.Data, msg.ObjectID(), msg.Opcode())
	}
	return nil
}
