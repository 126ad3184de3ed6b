package patch

import (
	"bytes"
	"fmt"
)

// keyboardKey is one entry of the key-code table the application expects
// from its native-integration module.
type keyboardKey struct {
	Name string
	Code int
}

// keyboardKeys is the fixed key identifier table. Order and values are part
// of the emitted module, so this slice must never be reordered.
var keyboardKeys = []keyboardKey{
	{"Backspace", 43},
	{"Tab", 280},
	{"Enter", 261},
	{"Shift", 272},
	{"Control", 61},
	{"Alt", 40},
	{"CapsLock", 56},
	{"Escape", 85},
	{"Space", 276},
	{"PageUp", 251},
	{"PageDown", 250},
	{"End", 83},
	{"Home", 154},
	{"LeftArrow", 175},
	{"UpArrow", 282},
	{"RightArrow", 262},
	{"DownArrow", 81},
	{"Delete", 79},
	{"Meta", 187},
}

// windowsVersion is the fixed OS version string the stub reports to the
// application in place of a real platform query.
const windowsVersion = "10.0.22621"

// noopFunctions are the capability entry points the stub accepts and
// ignores: window decoration, notification and progress-indicator calls.
var noopFunctions = []string{
	"setWindowEffect",
	"removeWindowEffect",
	"flashFrame",
	"clearFlashFrame",
	"showNotification",
	"setProgressBar",
	"clearProgressBar",
	"setOverlayIcon",
	"clearOverlayIcon",
}

// StubModule renders the replacement native-integration module. The output
// is deterministic: the same bytes are written to both install locations
// and they must stay identical.
func StubModule() []byte {
	var buf bytes.Buffer

	buf.WriteString("// Stub implementation of the claude-native bindings.\n")
	buf.WriteString("// Provides the key-code table and accepts all native UI calls as no-ops.\n\n")

	buf.WriteString("const KeyboardKey = Object.freeze({\n")
	for _, k := range keyboardKeys {
		fmt.Fprintf(&buf, "  %s: %d,\n", k.Name, k.Code)
	}
	buf.WriteString("});\n\n")

	buf.WriteString("module.exports = {\n")
	fmt.Fprintf(&buf, "  getWindowsVersion: () => %q,\n", windowsVersion)
	buf.WriteString("  getIsMaximized: () => false,\n")
	for _, fn := range noopFunctions {
		fmt.Fprintf(&buf, "  %s: () => {},\n", fn)
	}
	buf.WriteString("  KeyboardKey,\n")
	buf.WriteString("};\n")

	return buf.Bytes()
}
