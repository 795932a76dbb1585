package hotkey

import "golang.design/x/hotkey"

// Mod1 is Alt on X11.
const modAlt = hotkey.Mod1

// X11 keysyms for keys the library does not name.
var platformKeys = map[string]hotkey.Key{
	"Insert":     hotkey.Key(0xff63),
	"Home":       hotkey.Key(0xff50),
	"End":        hotkey.Key(0xff57),
	"PageUp":     hotkey.Key(0xff55),
	"PageDown":   hotkey.Key(0xff56),
	"Pause":      hotkey.Key(0xff13),
	"ScrollLock": hotkey.Key(0xff14),
	"NumLock":    hotkey.Key(0xff7f),
}
