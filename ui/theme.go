package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var (
	accentColor  = color.NRGBA{R: 0xff, G: 0x46, B: 0x55, A: 0xff}
	allyColor    = color.NRGBA{R: 0x4c, G: 0xc9, B: 0xa4, A: 0xff}
	enemyColor   = color.NRGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}
	surfaceColor = color.NRGBA{R: 0x0f, G: 0x19, B: 0x23, A: 0xff}
)

// OverlayTheme is the default theme forced to the dark variant with the
// overlay's accent colors.
type OverlayTheme struct {
	fyne.Theme
}

func NewOverlayTheme() fyne.Theme {
	return &OverlayTheme{Theme: theme.DefaultTheme()}
}

func (t *OverlayTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return accentColor
	case theme.ColorNameBackground:
		return surfaceColor
	}
	return t.Theme.Color(name, theme.VariantDark)
}
