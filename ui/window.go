package ui

import (
	"errors"

	"fyne.io/fyne/v2"
)

var errNoWindow = errors.New("window not created")

// WindowResizer resizes a fyne window from any goroutine and waits for the
// main thread to apply it. fyne's Resize cannot fail, so a missing window is
// the only error it returns.
type WindowResizer struct {
	Window fyne.Window
}

func (r *WindowResizer) Resize(width, height float32) error {
	if r.Window == nil {
		return errNoWindow
	}
	fyne.DoAndWait(func() {
		r.Window.Resize(fyne.NewSize(width, height))
	})
	return nil
}

// WindowVisibility shows and hides a fyne window from any goroutine.
type WindowVisibility struct {
	Window fyne.Window
}

func (v *WindowVisibility) Show() {
	fyne.Do(func() {
		v.Window.Show()
		v.Window.RequestFocus()
	})
}

func (v *WindowVisibility) Hide() {
	fyne.Do(v.Window.Hide)
}
