package hotkey

import "golang.design/x/hotkey"

const modAlt = hotkey.ModOption

// Carbon virtual key codes. Help sits where Insert is on PC keyboards;
// Pause, ScrollLock and NumLock have no Mac equivalent.
var platformKeys = map[string]hotkey.Key{
	"Insert":   hotkey.Key(0x72),
	"Home":     hotkey.Key(0x73),
	"End":      hotkey.Key(0x77),
	"PageUp":   hotkey.Key(0x74),
	"PageDown": hotkey.Key(0x79),
}
