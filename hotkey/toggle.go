package hotkey

import (
	"time"
)

// DefaultDebounce suppresses a second toggle fired by key repeat or a
// double registration callback.
const DefaultDebounce = 300 * time.Millisecond

// Window is the part of the overlay window the toggle needs.
type Window interface {
	Show()
	Hide()
}

// Toggler flips window visibility. Its guard is plain state because it is
// only touched from the command loop.
type Toggler struct {
	win        Window
	visible    bool
	debounce   time.Duration
	guardUntil time.Time
	now        func() time.Time
}

// NewToggler creates a toggler for a window that starts visible.
func NewToggler(win Window, debounce time.Duration) *Toggler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Toggler{win: win, visible: true, debounce: debounce, now: time.Now}
}

// Visible reports the last visibility the toggler set.
func (t *Toggler) Visible() bool {
	return t.visible
}

// Toggle hides a visible window or shows a hidden one. It returns false when
// the call landed inside the debounce window and was ignored.
func (t *Toggler) Toggle() bool {
	now := t.now()
	if now.Before(t.guardUntil) {
		return false
	}
	t.guardUntil = now.Add(t.debounce)

	if t.visible {
		t.win.Hide()
	} else {
		t.win.Show()
	}
	t.visible = !t.visible
	return true
}
