package config

// KeyCodes maps the human-readable key names the original Rust CLI
// accepted (original_source/config/src/lib.rs's `Key` enum) to the opaque
// evdev-style codes the core treats as plain int32 (spec.md §9: "the core
// must not embed platform enum identities" -- this table is the only place
// a name is ever attached to a code).
var KeyCodes = map[string]int32{
	"RightCtrl": 97,
	"RightAlt":  100,
	"LeftCtrl":  29,
	"LeftAlt":   56,
	"LeftShift": 42,
	"Tab":       15,
	"Escape":    1,
	"Space":     57,
}

// ResolveKeys turns a list of key names into codes, silently skipping names
// not present in KeyCodes.
func ResolveKeys(names []string) []int32 {
	codes := make([]int32, 0, len(names))
	for _, n := range names {
		if c, ok := KeyCodes[n]; ok {
			codes = append(codes, c)
		}
	}
	return codes
}
