// Command wldbg is the interactive Wayland wire-protocol debugger: it
// brokers a UNIX socket pair between a Wayland client and server,
// resolves live protocol objects, and drops an operator into a REPL on
// breakpoints and filter hits.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/sandia-minimega/wldbg/internal/broker"
	"github.com/sandia-minimega/wldbg/internal/config"
	"github.com/sandia-minimega/wldbg/internal/interactive"
	"github.com/sandia-minimega/wldbg/internal/loop"
	"github.com/sandia-minimega/wldbg/internal/pass"
	"github.com/sandia-minimega/wldbg/pkg/dbglog"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

var (
	fConfig = flag.String("config", "", "path to a YAML config file (default: $WLDBG_CONFIG)")
	fServer = flag.Bool("server", true, "run in server mode: impersonate the real compositor socket")
)

func usage() {
	fmt.Println("wldbg: an interactive Wayland wire-protocol debugger")
	fmt.Println("usage: wldbg [option]...")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*fConfig)
	if err != nil {
		// The logger isn't set up yet -- a malformed config is fatal
		// before any sink exists to report it to.
		fmt.Fprintln(os.Stderr, "wldbg:", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	if cfg.RuntimeDir != "" {
		os.Setenv("XDG_RUNTIME_DIR", cfg.RuntimeDir)
	}
	if cfg.Socket != "" {
		os.Setenv("WAYLAND_DISPLAY", cfg.Socket)
	}

	reg := wlproto.NewCoreRegistry()
	lp := loop.New(8)

	factories := map[string]pass.Factory{}

	newPipeline := func(conn *broker.Connection) (*pass.Pipeline, error) {
		tail := interactive.New(conn, reg, interactive.Options{
			Editor: cfg.Editor,
		})
		p, err := pass.New(tail, factories)
		if err != nil {
			return nil, err
		}
		for _, name := range cfg.Preload {
			if err := p.Add(name, nil); err != nil {
				dbglog.Warnln("wldbg: preloading pass", name, "failed:", err)
			}
		}
		return p, nil
	}
	br := broker.New(reg, lp, newPipeline)

	stop := make(chan struct{})
	lp.WatchSignals(stop, func(os.Signal) {
		for _, conn := range br.Connections() {
			if tail := conn.Pipeline.Tail(); tail != nil {
				if b, ok := tail.(interface{ SignalBreak() }); ok {
					b.SignalBreak()
				}
			}
		}
	}, os.Interrupt)
	defer close(stop)

	if *fServer {
		runServerMode(br, lp)
		return
	}

	dbglog.Fatal("wldbg: only -server mode is currently implemented")
}

func setupLogging(cfg *config.Config) {
	level, err := dbglog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = dbglog.INFO
	}
	dbglog.AddWriterLogger("stderr", os.Stderr, level, true)
	dbglog.EnableHistory("history", 256, dbglog.WARN)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			dbglog.Warnln("wldbg: opening log file", cfg.LogFile, "failed:", err)
		} else {
			dbglog.AddWriterLogger("file", f, level, false)
		}
	}
}

// runServerMode implements spec.md §6's server-mode socket discovery:
// move the real compositor socket aside, listen on its name, and for
// every accepted client dial the real socket and pair the two.
func runServerMode(br *broker.Broker, lp *loop.Loop) {
	path, err := broker.SocketPath()
	if err != nil {
		dbglog.Fatal("wldbg: %v", err)
	}

	realPath, restore, err := broker.EnterServerMode(path)
	if err != nil {
		dbglog.Fatal("wldbg: %v", err)
	}
	defer func() {
		if err := restore(); err != nil {
			dbglog.Warnln("wldbg: restoring real socket failed:", err)
		}
	}()

	ln, err := broker.Listen(path)
	if err != nil {
		dbglog.Fatal("wldbg: listening on %s: %v", path, err)
	}
	defer ln.Close()

	dbglog.Infoln("wldbg: listening on", path, "real compositor at", realPath)

	go acceptLoop(ln, realPath, br)

	lp.Run()
}

func acceptLoop(ln *net.UnixListener, realPath string, br *broker.Broker) {
	for {
		client, err := ln.AcceptUnix()
		if err != nil {
			dbglog.Errorln("wldbg: accept failed:", err)
			return
		}

		server, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: realPath, Net: "unix"})
		if err != nil {
			dbglog.Errorln("wldbg: dialing real compositor socket failed:", err)
			client.Close()
			continue
		}

		meta, err := broker.ResolveClientMeta(client)
		if err != nil {
			dbglog.Warnln("wldbg: resolving client metadata failed:", err)
		}

		if _, err := br.Pair(client, server, meta); err != nil {
			dbglog.Errorln("wldbg: pairing connection failed:", err)
		}
	}
}
