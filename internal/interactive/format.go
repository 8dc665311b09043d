package interactive

import (
	"fmt"

	"github.com/sandia-minimega/wldbg/internal/wire"
	"github.com/sandia-minimega/wldbg/pkg/wlproto"
)

// declFor returns the declared request or event for msg's opcode against
// iface, following msg.Dir.
func declFor(msg *wire.Message, iface *wlproto.Interface) *wlproto.Message {
	if iface == nil {
		return nil
	}
	if msg.Dir == wire.ClientToServer {
		return iface.Request(int(msg.Opcode()))
	}
	return iface.Event(int(msg.Opcode()))
}

// canonicalName renders msg as "interface.message" for filter matching
// and REPL display, falling back to a numeric placeholder when the
// object id or opcode can't be resolved.
func canonicalName(msg *wire.Message, iface *wlproto.Interface) string {
	if iface == nil {
		return fmt.Sprintf("unknown(id=%d).opcode(%d)", msg.ObjectID(), msg.Opcode())
	}
	decl := declFor(msg, iface)
	if decl == nil {
		return fmt.Sprintf("%s.opcode(%d)", iface.Name, msg.Opcode())
	}
	return fmt.Sprintf("%s.%s", iface.Name, decl.Name)
}
