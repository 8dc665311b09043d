package interactive

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/dbglog"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

var commandTable = []command{
	{Long: "break", Alias: "b", Summary: "create/delete a breakpoint", Handler: cmdBreak},
	{Long: "continue", Alias: "c", Summary: "leave the REPL, forward until next stop", Handler: cmdContinue},
	{Long: "edit", Alias: "e", Summary: "edit the current message in an external editor", Handler: cmdEdit},
	{Long: "help", Alias: "", Summary: "print the command listing", Handler: cmdHelp},
	{Long: "hide", Alias: "h", Summary: "create a hide filter", Handler: cmdHide},
	{Long: "info", Alias: "i", Summary: "print state (message/objects/breakpoints/process/connection)", Handler: cmdInfo},
	{Long: "next", Alias: "n", Summary: "single-step one message", Handler: cmdNext},
	{Long: "pass", Alias: "", Summary: "pass administration (list/loaded/add/remove)", Handler: cmdPass},
	{Long: "quit", Alias: "q", Summary: "terminate the session", Handler: cmdQuit},
	{Long: "send", Alias: "s", Summary: "craft and inject a message", Handler: cmdSend},
	{Long: "showonly", Alias: "so", Summary: "create a show-only filter", Handler: cmdShowonly},
}

func init() {
	sort.Slice(commandTable, func(a, b int) bool { return commandTable[a].Long < commandTable[b].Long })
}

func cmdContinue(i *Interactive, args string) Result {
	return EndQuery
}

func cmdNext(i *Interactive, args string) Result {
	i.singleStep = true
	return EndQuery
}

func cmdBreak(i *Interactive, args string) Result {
	args = strings.TrimSpace(args)
	switch {
	case args == "server":
		i.addBreakpoint(OnSideBreakpoint(i.nextBreakID, wire.ServerToClient))
	case args == "client":
		i.addBreakpoint(OnSideBreakpoint(i.nextBreakID, wire.ClientToServer))
	case strings.HasPrefix(args, "id "):
		n, err := strconv.ParseUint(strings.TrimSpace(args[3:]), 10, 32)
		if err != nil {
			fmt.Fprintf(i.out, "break: invalid object id: %v\n", err)
			return ContinueQuery
		}
		i.addBreakpoint(OnIDBreakpoint(i.nextBreakID, uint32(n)))
	case strings.HasPrefix(args, "delete ") || strings.HasPrefix(args, "d "):
		rest := strings.TrimPrefix(strings.TrimPrefix(args, "delete "), "d ")
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintf(i.out, "break: invalid breakpoint id: %v\n", err)
			return ContinueQuery
		}
		if !i.deleteBreakpoint(n) {
			fmt.Fprintf(i.out, "break: no such breakpoint %d\n", n)
		}
	case strings.Contains(args, "@"):
		parts := strings.SplitN(args, "@", 2)
		bp, err := OnOpcodeBreakpoint(i.nextBreakID, i.reg, parts[0], parts[1])
		if err != nil {
			fmt.Fprintf(i.out, "break: %v\n", err)
			return ContinueQuery
		}
		i.addBreakpoint(bp)
	default:
		fmt.Fprintf(i.out, "break: unrecognized breakpoint spec %q\n", args)
	}
	return ContinueQuery
}

func (i *Interactive) addBreakpoint(b *Breakpoint) {
	i.breakpoints = append(i.breakpoints, b)
	i.nextBreakID++
	fmt.Fprintf(i.out, "breakpoint %d: %s\n", b.ID, b.Description)
}

func (i *Interactive) deleteBreakpoint(id int) bool {
	for idx, b := range i.breakpoints {
		if b.ID == id {
			i.breakpoints = append(i.breakpoints[:idx], i.breakpoints[idx+1:]...)
			return true
		}
	}
	return false
}

func cmdHide(i *Interactive, args string) Result {
	return addFilter(i, args, false)
}

func cmdShowonly(i *Interactive, args string) Result {
	return addFilter(i, args, true)
}

func addFilter(i *Interactive, pattern string, showOnly bool) Result {
	pattern = strings.TrimSpace(pattern)
	f, err := NewFilter(i.nextFilterID, pattern, showOnly)
	if err != nil {
		fmt.Fprintf(i.out, "filter: invalid regex %q: %v\n", pattern, err)
		return ContinueQuery
	}
	i.filters = append([]*Filter{f}, i.filters...)
	i.nextFilterID++
	fmt.Fprintf(i.out, "filter %d: %q (show_only=%v)\n", f.ID, f.Pattern, f.ShowOnly)
	return ContinueQuery
}

func cmdPass(i *Interactive, args string) Result {
	args = strings.TrimSpace(args)
	switch {
	case args == "list":
		for _, name := range i.conn.Pipeline.List() {
			fmt.Fprintln(i.out, name)
		}
	case args == "loaded":
		for _, name := range i.conn.Pipeline.Loaded() {
			fmt.Fprintln(i.out, name)
		}
	case strings.HasPrefix(args, "add "):
		name := strings.TrimSpace(args[4:])
		if err := i.conn.Pipeline.Add(name, nil); err != nil {
			fmt.Fprintf(i.out, "pass: %v\n", err)
		}
	case strings.HasPrefix(args, "remove "):
		name := strings.TrimSpace(args[7:])
		if err := i.conn.Pipeline.Remove(name); err != nil {
			fmt.Fprintf(i.out, "pass: %v\n", err)
		}
	default:
		fmt.Fprintf(i.out, "pass: unrecognized subcommand %q\n", args)
	}
	return ContinueQuery
}

// cmdSend implements "send server|client <id> <opcode> [hex words...]"
// (spec.md §4.G). Per spec.md §9's open question, injected messages
// bypass the object resolver: a send that binds a new id will not be
// reflected in the table, same as the original.
func cmdSend(i *Interactive, args string) Result {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		fmt.Fprintln(i.out, "send: usage: send server|client <object-id> <opcode> [hex words...]")
		return ContinueQuery
	}

	var sock interface {
		Write(b []byte) (int, error)
	}

	switch fields[0] {
	case "server":
		sock = i.conn.Server
	case "client":
		sock = i.conn.Client
	default:
		fmt.Fprintf(i.out, "send: first argument must be server or client, got %q\n", fields[0])
		return ContinueQuery
	}

	objectID, err := strconv.ParseUint(fields[1], 0, 32)
	if err != nil {
		fmt.Fprintf(i.out, "send: invalid object id: %v\n", err)
		return ContinueQuery
	}
	opcode, err := strconv.ParseUint(fields[2], 0, 16)
	if err != nil {
		fmt.Fprintf(i.out, "send: invalid opcode: %v\n", err)
		return ContinueQuery
	}

	var body []byte
	for _, word := range fields[3:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(word), "0x"), 16, 32)
		if err != nil {
			fmt.Fprintf(i.out, "send: invalid hex word %q: %v\n", word, err)
			return ContinueQuery
		}
		body = append(body, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}

	data := make([]byte, 8+len(body))
	copy(data[8:], body)
	wire.SetHeader(data, uint32(objectID), uint16(opcode))

	if _, err := sock.Write(data); err != nil {
		fmt.Fprintf(i.out, "send: %v\n", err)
	}
	return ContinueQuery
}

func cmdEdit(i *Interactive, args string) Result {
	if i.currentMsg == nil {
		fmt.Fprintln(i.out, "edit: no current message")
		return ContinueQuery
	}
	override := strings.TrimSpace(args)
	if override == "" {
		override = i.opts.Editor
	}
	if err := editMessage(i.currentMsg, override, os.Getenv(i.opts.EditorEnv)); err != nil {
		fmt.Fprintf(i.out, "edit: %v\n", err)
	}
	return ContinueQuery
}

func cmdHelp(i *Interactive, args string) Result {
	for _, cmd := range commandTable {
		alias := cmd.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(i.out, "%-10s %-5s %s\n", cmd.Long, alias, cmd.Summary)
	}
	return ContinueQuery
}

func cmdQuit(i *Interactive, args string) Result {
	answer, err := i.line.Prompt("quit this session? (y/n) ")
	if err != nil {
		return ContinueQuery
	}
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		return ContinueQuery
	}

	i.quitting = true
	i.conn.QuitRequested = true
	i.conn.Client.Close()
	return EndQuery
}

func cmdInfo(i *Interactive, args string) Result {
	args = strings.TrimSpace(args)
	switch args {
	case "message":
		if i.currentMsg == nil {
			fmt.Fprintln(i.out, "info message: no current message")
			return ContinueQuery
		}
		iface := i.conn.Objects.Get(i.currentMsg.ObjectID())
		fmt.Fprintf(i.out, "%s %s (%d bytes, fd=%d)\n",
			i.currentMsg.Dir, canonicalName(i.currentMsg, iface), len(i.currentMsg.Data), i.currentMsg.FD)

	case "objects":
		i.conn.Objects.Iterate(func(id uint32, iface *wlproto.Interface) {
			fmt.Fprintf(i.out, "%d: %s\n", id, iface.Name)
		})

	case "breakpoints":
		if len(i.breakpoints) == 0 {
			fmt.Fprintln(i.out, "no breakpoints")
		}
		for _, b := range i.breakpoints {
			fmt.Fprintf(i.out, "%d: %s\n", b.ID, b.Description)
		}

	case "process":
		snap, err := readProcSnapshot(i.conn.Meta.PID)
		if err != nil {
			fmt.Fprintf(i.out, "info process: %v\n", err)
			return ContinueQuery
		}
		fmt.Fprintln(i.out, snap.String())
		for _, l := range dbglog.History() {
			fmt.Fprint(i.out, l)
		}

	case "connection":
		stats := i.conn.Stats()
		fmt.Fprintf(i.out, "connection %s: pid=%d path=%s argv=%v client->server=%d server->client=%d\n",
			i.conn.ID(), i.conn.Meta.PID, i.conn.Meta.Path, i.conn.Meta.Argv, stats.ClientToServer, stats.ServerToClient)

	default:
		fmt.Fprintf(i.out, "info: unknown subcommand %q\n", args)
	}
	return ContinueQuery
}
