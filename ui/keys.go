package ui

import (
	"MatchLens/hotkey"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// fyne reports some keys under X11-style names.
var keyNames = map[fyne.KeyName]string{
	fyne.KeyReturn:    hotkey.KeyEnter,
	fyne.KeyEnter:     hotkey.KeyEnter,
	fyne.KeyBackspace: hotkey.KeyBackspace,
	fyne.KeySpace:     hotkey.KeySpace,
	fyne.KeyPageUp:    "PageUp",
	fyne.KeyPageDown:  "PageDown",
	fyne.KeyUp:        "ArrowUp",
	fyne.KeyDown:      "ArrowDown",
	fyne.KeyLeft:      "ArrowLeft",
	fyne.KeyRight:     "ArrowRight",

	desktop.KeyShiftLeft:    hotkey.KeyShift,
	desktop.KeyShiftRight:   hotkey.KeyShift,
	desktop.KeyControlLeft:  hotkey.KeyControl,
	desktop.KeyControlRight: hotkey.KeyControl,
	desktop.KeyAltLeft:      hotkey.KeyAlt,
	desktop.KeyAltRight:     hotkey.KeyAlt,
	desktop.KeySuperLeft:    hotkey.KeyMeta,
	desktop.KeySuperRight:   hotkey.KeyMeta,
	desktop.KeyCapsLock:     hotkey.KeyCapsLock,
}

func translateKey(name fyne.KeyName) string {
	if k, ok := keyNames[name]; ok {
		return k
	}
	return string(name)
}

// modifierTracker remembers which modifier keys are held, since fyne's key
// events carry no modifier state. Only touched on the fyne main thread.
type modifierTracker struct {
	held map[fyne.KeyName]bool
}

func newModifierTracker() *modifierTracker {
	return &modifierTracker{held: make(map[fyne.KeyName]bool)}
}

// down records a key press and returns it with the modifiers held at that
// moment, including the key itself when it is a modifier.
func (m *modifierTracker) down(name fyne.KeyName) hotkey.KeyEvent {
	key := translateKey(name)
	if isModifierName(key) {
		m.held[name] = true
	}
	return hotkey.KeyEvent{
		Key:   key,
		Ctrl:  m.anyHeld(hotkey.KeyControl),
		Alt:   m.anyHeld(hotkey.KeyAlt),
		Shift: m.anyHeld(hotkey.KeyShift),
	}
}

func (m *modifierTracker) up(name fyne.KeyName) {
	delete(m.held, name)
}

func (m *modifierTracker) reset() {
	clear(m.held)
}

func (m *modifierTracker) anyHeld(modifier string) bool {
	for name := range m.held {
		if translateKey(name) == modifier {
			return true
		}
	}
	return false
}

func isModifierName(key string) bool {
	switch key {
	case hotkey.KeyControl, hotkey.KeyAlt, hotkey.KeyShift, hotkey.KeyMeta:
		return true
	}
	return false
}
