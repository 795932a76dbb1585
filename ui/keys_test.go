package ui

import (
	"testing"

	"MatchLens/hotkey"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	cases := map[fyne.KeyName]string{
		fyne.KeyReturn:         "Enter",
		fyne.KeyEnter:          "Enter",
		fyne.KeyBackspace:      "Backspace",
		fyne.KeyPageUp:         "PageUp",
		fyne.KeyLeft:           "ArrowLeft",
		fyne.KeyF5:             "F5",
		fyne.KeyK:              "K",
		fyne.KeyEscape:         "Escape",
		desktop.KeyControlLeft: "Control",
		desktop.KeyAltRight:    "Alt",
	}
	for in, want := range cases {
		assert.Equal(t, want, translateKey(in), string(in))
	}
}

func TestModifierTracker(t *testing.T) {
	m := newModifierTracker()

	e := m.down(desktop.KeyControlLeft)
	assert.Equal(t, hotkey.KeyEvent{Key: "Control", Ctrl: true}, e)
	assert.Equal(t, "Ctrl+", hotkey.Decide(e).Preview)

	m.down(desktop.KeyShiftRight)
	e = m.down(fyne.KeyK)
	assert.Equal(t, hotkey.KeyEvent{Key: "K", Ctrl: true, Shift: true}, e)
	assert.Equal(t, "Ctrl+Shift+K", hotkey.Decide(e).Binding)

	m.up(desktop.KeyControlLeft)
	m.up(desktop.KeyShiftRight)
	e = m.down(fyne.KeyF2)
	assert.Equal(t, hotkey.KeyEvent{Key: "F2"}, e)
}

func TestModifierTrackerBothSides(t *testing.T) {
	m := newModifierTracker()
	m.down(desktop.KeyShiftLeft)
	m.down(desktop.KeyShiftRight)
	m.up(desktop.KeyShiftLeft)

	assert.True(t, m.down(fyne.KeyA).Shift, "right shift still held")

	m.reset()
	assert.False(t, m.down(fyne.KeyA).Shift)
}
