package broker

import (
	"bytes"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// ResolveClientMeta reads the peer's credentials off client's SO_PEERCRED
// and enriches them with /proc/<pid>/cmdline, giving the path/argv/pid
// ClientMeta spec.md §3 requires of every Connection accepted in server
// mode (a dialing client in library mode already knows its own argv).
func ResolveClientMeta(client *net.UnixConn) (ClientMeta, error) {
	raw, err := client.SyscallConn()
	if err != nil {
		return ClientMeta{}, fmt.Errorf("broker: client syscall conn: %w", err)
	}

	var ucred *unix.Ucred
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		ucred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return ClientMeta{}, fmt.Errorf("broker: reading peer credentials: %w", err)
	}
	if sockErr != nil {
		return ClientMeta{}, fmt.Errorf("broker: SO_PEERCRED: %w", sockErr)
	}

	pid := int(ucred.Pid)
	argv, err := readCmdline(pid)
	if err != nil {
		// The peer may have already exited between accept and here; this
		// is not fatal to pairing the connection.
		return ClientMeta{PID: pid}, nil
	}

	path := ""
	if len(argv) > 0 {
		path = argv[0]
	}
	return ClientMeta{Path: path, Argv: argv, PID: pid}, nil
}

func readCmdline(pid int) ([]string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return nil, err
	}
	parts := bytes.Split(bytes.TrimRight(data, "\x00"), []byte{0})
	argv := make([]string, len(parts))
	for i, p := range parts {
		argv[i] = string(p)
	}
	return argv, nil
}
