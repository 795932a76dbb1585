package hotkey

import "golang.design/x/hotkey"

const modAlt = hotkey.ModAlt

// Virtual-key codes for keys the library does not name.
var platformKeys = map[string]hotkey.Key{
	"Insert":     hotkey.Key(0x2D),
	"Home":       hotkey.Key(0x24),
	"End":        hotkey.Key(0x23),
	"PageUp":     hotkey.Key(0x21),
	"PageDown":   hotkey.Key(0x22),
	"Pause":      hotkey.Key(0x13),
	"ScrollLock": hotkey.Key(0x91),
	"NumLock":    hotkey.Key(0x90),
}
