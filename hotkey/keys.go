package hotkey

import (
	"strings"
	"unicode"
)

// Key names used by KeyEvent. The ui package translates toolkit key names
// into these.
const (
	KeyEscape    = "Escape"
	KeyTab       = "Tab"
	KeyCapsLock  = "CapsLock"
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeySpace     = "Space"

	KeyControl = "Control"
	KeyAlt     = "Alt"
	KeyShift   = "Shift"
	KeyMeta    = "Meta"
)

// blockedKeys never produce a binding.
var blockedKeys = map[string]bool{
	KeyEscape:    true,
	KeyTab:       true,
	KeyCapsLock:  true,
	KeyEnter:     true,
	KeyBackspace: true,
	KeySpace:     true,
}

var modifierKeys = map[string]bool{
	KeyControl: true,
	KeyAlt:     true,
	KeyShift:   true,
	KeyMeta:    true,
}

// standaloneKeys may be bound without any modifier held.
var standaloneKeys = map[string]bool{
	"F1": true, "F2": true, "F3": true, "F4": true, "F5": true, "F6": true,
	"F7": true, "F8": true, "F9": true, "F10": true, "F11": true, "F12": true,
	"Insert": true, "Delete": true, "Home": true, "End": true,
	"PageUp": true, "PageDown": true,
	"Pause": true, "ScrollLock": true, "NumLock": true,
}

// KeyEvent is one raw key-down with the modifiers held at that moment.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
}

// IsModifier reports whether the pressed key itself is a modifier.
func (e KeyEvent) IsModifier() bool {
	return modifierKeys[e.Key]
}

// prefix returns the held modifiers in the fixed Ctrl, Alt, Shift order.
func (e KeyEvent) prefix() []string {
	parts := make([]string, 0, 3)
	if e.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if e.Alt {
		parts = append(parts, "Alt")
	}
	if e.Shift {
		parts = append(parts, "Shift")
	}
	return parts
}

// Preview is the live text shown while modifiers are held, e.g. "Ctrl+Alt+".
func Preview(e KeyEvent) string {
	parts := e.prefix()
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "+") + "+"
}

// NormalizeKey upper-cases letters and function keys and maps a literal
// space to its name.
func NormalizeKey(key string) string {
	if key == " " {
		return KeySpace
	}
	if isFunctionKey(key) {
		return strings.ToUpper(key)
	}
	r := []rune(key)
	if len(r) == 1 && unicode.IsLetter(r[0]) {
		return strings.ToUpper(key)
	}
	return key
}

// BuildBinding turns a key-down into a binding string such as "Ctrl+Shift+K"
// or "F2". It returns false for modifiers, blocked keys and bare keys that
// would swallow normal typing.
func BuildBinding(e KeyEvent) (string, bool) {
	key := NormalizeKey(e.Key)
	if key == "" || blockedKeys[key] || modifierKeys[key] {
		return "", false
	}

	parts := e.prefix()
	if len(parts) == 0 {
		if standaloneKeys[key] || isAlphanumeric(key) {
			return key, true
		}
		return "", false
	}
	return strings.Join(append(parts, key), "+"), true
}

// SplitBinding breaks "Ctrl+Shift+K" into its modifier tokens and key.
func SplitBinding(binding string) (mods []string, key string) {
	parts := strings.Split(binding, "+")
	if len(parts) == 0 {
		return nil, ""
	}
	return parts[:len(parts)-1], parts[len(parts)-1]
}

func isAlphanumeric(key string) bool {
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isFunctionKey(key string) bool {
	if len(key) < 2 || len(key) > 3 || (key[0] != 'F' && key[0] != 'f') {
		return false
	}
	for _, c := range key[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
