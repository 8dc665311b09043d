package wlproto

// CoreInterfaces is the built-in table shipped with wldbg: the core
// wayland.xml interfaces needed to resolve ordinary client/compositor
// traffic, plus one wlr protocol extension (zwlr_virtual_pointer_manager_v1,
// named after the real interface exercised by the wayland-virtual-input-go
// example) so the registry isn't limited to core-only sessions.
var CoreInterfaces = []Interface{
	{
		Name: "wl_display",
		Requests: []Message{
			{Name: "sync", Args: []Arg{{Name: "callback", Kind: ArgNewID, Interface: "wl_callback"}}},
			{Name: "get_registry", Args: []Arg{{Name: "registry", Kind: ArgNewID, Interface: "wl_registry"}}},
		},
		Events: []Message{
			{Name: "error", Args: []Arg{
				{Name: "object_id", Kind: ArgObject},
				{Name: "code", Kind: ArgUint},
				{Name: "message", Kind: ArgString},
			}},
			{Name: "delete_id", Args: []Arg{{Name: "id", Kind: ArgUint}}},
		},
	},
	{
		Name: "wl_registry",
		Requests: []Message{
			{Name: "bind", Args: []Arg{
				{Name: "name", Kind: ArgUint},
				{Name: "id", Kind: ArgNewID}, // untyped: interface+version read from body
			}},
		},
		Events: []Message{
			{Name: "global", Args: []Arg{
				{Name: "name", Kind: ArgUint},
				{Name: "interface", Kind: ArgString},
				{Name: "version", Kind: ArgUint},
			}},
			{Name: "global_remove", Args: []Arg{{Name: "name", Kind: ArgUint}}},
		},
	},
	{
		Name: "wl_callback",
		Events: []Message{
			{Name: "done", Args: []Arg{{Name: "callback_data", Kind: ArgUint}}},
		},
	},
	{
		Name: "wl_compositor",
		Requests: []Message{
			{Name: "create_surface", Args: []Arg{{Name: "id", Kind: ArgNewID, Interface: "wl_surface"}}},
			{Name: "create_region", Args: []Arg{{Name: "id", Kind: ArgNewID, Interface: "wl_region"}}},
		},
	},
	{
		Name: "wl_region",
		Requests: []Message{
			{Name: "destroy"},
			{Name: "add", Args: []Arg{{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}}},
			{Name: "subtract", Args: []Arg{{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}}},
		},
	},
	{
		Name: "wl_surface",
		Requests: []Message{
			{Name: "destroy"},
			{Name: "attach", Args: []Arg{{Name: "buffer", Kind: ArgObject, Interface: "wl_buffer"}, {Kind: ArgInt}, {Kind: ArgInt}}},
			{Name: "damage", Args: []Arg{{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}}},
			{Name: "frame", Args: []Arg{{Name: "callback", Kind: ArgNewID, Interface: "wl_callback"}}},
			{Name: "set_opaque_region", Args: []Arg{{Kind: ArgObject, Interface: "wl_region"}}},
			{Name: "set_input_region", Args: []Arg{{Kind: ArgObject, Interface: "wl_region"}}},
			{Name: "commit"},
			{Name: "set_buffer_transform", Args: []Arg{{Kind: ArgInt}}},
			{Name: "set_buffer_scale", Args: []Arg{{Kind: ArgInt}}},
			{Name: "damage_buffer", Args: []Arg{{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}}},
		},
		Events: []Message{
			{Name: "enter", Args: []Arg{{Kind: ArgObject, Interface: "wl_output"}}},
			{Name: "leave", Args: []Arg{{Kind: ArgObject, Interface: "wl_output"}}},
		},
	},
	{
		Name: "wl_seat",
		Requests: []Message{
			{Name: "get_pointer", Args: []Arg{{Name: "id", Kind: ArgNewID, Interface: "wl_pointer"}}},
			{Name: "get_keyboard", Args: []Arg{{Name: "id", Kind: ArgNewID, Interface: "wl_keyboard"}}},
			{Name: "get_touch", Args: []Arg{{Name: "id", Kind: ArgNewID, Interface: "wl_touch"}}},
		},
		Events: []Message{
			{Name: "capabilities", Args: []Arg{{Kind: ArgUint}}},
			{Name: "name", Args: []Arg{{Kind: ArgString}}},
		},
	},
	{
		Name: "wl_pointer",
		Requests: []Message{
			{Name: "set_cursor", Args: []Arg{
				{Name: "serial", Kind: ArgUint},
				{Name: "surface", Kind: ArgObject, Interface: "wl_surface"},
				{Kind: ArgInt}, {Kind: ArgInt},
			}},
			{Name: "release"},
		},
		Events: []Message{
			{Name: "enter", Args: []Arg{
				{Kind: ArgUint}, {Kind: ArgObject, Interface: "wl_surface"}, {Kind: ArgFixed}, {Kind: ArgFixed},
			}},
			{Name: "leave", Args: []Arg{{Kind: ArgUint}, {Kind: ArgObject, Interface: "wl_surface"}}},
			{Name: "motion", Args: []Arg{{Kind: ArgUint}, {Kind: ArgFixed}, {Kind: ArgFixed}}},
			{Name: "button", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}}},
			{Name: "axis", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgFixed}}},
		},
	},
	{
		Name: "wl_keyboard",
		Requests: []Message{
			{Name: "release"},
		},
		Events: []Message{
			{Name: "keymap", Args: []Arg{{Kind: ArgUint}, {Kind: ArgFD}, {Kind: ArgUint}}},
			{Name: "enter", Args: []Arg{{Kind: ArgUint}, {Kind: ArgObject, Interface: "wl_surface"}, {Kind: ArgArray}}},
			{Name: "leave", Args: []Arg{{Kind: ArgUint}, {Kind: ArgObject, Interface: "wl_surface"}}},
			{Name: "key", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}}},
			{Name: "modifiers", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}}},
		},
	},
	{
		Name: "wl_output",
		Events: []Message{
			{Name: "geometry", Args: []Arg{
				{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt},
				{Kind: ArgInt}, {Kind: ArgString}, {Kind: ArgString}, {Kind: ArgInt},
			}},
			{Name: "mode", Args: []Arg{{Kind: ArgUint}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}}},
			{Name: "done"},
		},
	},
	{
		Name: "wl_shm",
		Requests: []Message{
			{Name: "create_pool", Args: []Arg{
				{Name: "id", Kind: ArgNewID, Interface: "wl_shm_pool"},
				{Name: "fd", Kind: ArgFD},
				{Name: "size", Kind: ArgInt},
			}},
		},
		Events: []Message{
			{Name: "format", Args: []Arg{{Kind: ArgUint}}},
		},
	},
	{
		Name: "wl_shm_pool",
		Requests: []Message{
			{Name: "create_buffer", Args: []Arg{
				{Name: "id", Kind: ArgNewID, Interface: "wl_buffer"},
				{Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgInt}, {Kind: ArgUint},
			}},
			{Name: "destroy"},
			{Name: "resize", Args: []Arg{{Kind: ArgInt}}},
		},
	},
	{
		Name: "wl_buffer",
		Requests: []Message{
			{Name: "destroy"},
		},
		Events: []Message{
			{Name: "release"},
		},
	},
	{
		Name: "zwlr_virtual_pointer_manager_v1",
		Requests: []Message{
			{Name: "create_virtual_pointer", Args: []Arg{
				{Name: "seat", Kind: ArgObject, Interface: "wl_seat"},
				{Name: "id", Kind: ArgNewID, Interface: "zwlr_virtual_pointer_v1"},
			}},
		},
	},
	{
		Name: "zwlr_virtual_pointer_v1",
		Requests: []Message{
			{Name: "motion", Args: []Arg{{Kind: ArgUint}, {Kind: ArgFixed}, {Kind: ArgFixed}}},
			{Name: "button", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgUint}}},
			{Name: "axis", Args: []Arg{{Kind: ArgUint}, {Kind: ArgUint}, {Kind: ArgFixed}}},
			{Name: "frame"},
			{Name: "destroy"},
		},
	},
}

// NewCoreRegistry returns a Registry preloaded with CoreInterfaces.
func NewCoreRegistry() *Registry {
	return NewRegistry(CoreInterfaces)
}
