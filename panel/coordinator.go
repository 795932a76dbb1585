// Package panel keeps the side panel's logical state and the window width in
// step. Opening from closed widens the window once; switching panels while
// open never resizes; closing always shrinks it back once.
package panel

import (
	"errors"
	"fmt"

	"MatchLens/game"

	"github.com/sirupsen/logrus"
)

// Window geometry, in logical pixels.
const (
	BaseWidth    float32 = 380
	PanelWidth   float32 = 260
	WindowHeight float32 = 800
)

// ErrWindow wraps resize failures. They are never fatal.
var ErrWindow = errors.New("window resize failed")

// Type is the kind of panel shown.
type Type int

const (
	None Type = iota
	Settings
	Player
)

func (t Type) String() string {
	switch t {
	case Settings:
		return "settings"
	case Player:
		return "player"
	}
	return "none"
}

// State is the side panel state. A closed panel always has Type None and no
// selected player.
type State struct {
	IsOpen   bool
	Type     Type
	Selected *game.PlayerSnapshot
}

// Resizer changes the window's size.
type Resizer interface {
	Resize(width, height float32) error
}

// Coordinator owns State. It is driven from the command loop only.
type Coordinator struct {
	resizer Resizer
	state   State
}

// NewCoordinator returns a coordinator with the panel closed.
func NewCoordinator(r Resizer) *Coordinator {
	return &Coordinator{resizer: r}
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	s := c.state
	if s.Selected != nil {
		p := *s.Selected
		s.Selected = &p
	}
	return s
}

// OpenSettings shows the settings panel.
func (c *Coordinator) OpenSettings() error {
	return c.open(Settings, nil)
}

// OpenPlayer shows the detail panel for p.
func (c *Coordinator) OpenPlayer(p game.PlayerSnapshot) error {
	return c.open(Player, &p)
}

// Close hides the panel and shrinks the window back to BaseWidth.
func (c *Coordinator) Close() error {
	c.state = State{}
	return c.resize(BaseWidth)
}

func (c *Coordinator) open(t Type, p *game.PlayerSnapshot) error {
	wasOpen := c.state.IsOpen
	c.state = State{IsOpen: true, Type: t, Selected: p}
	if wasOpen {
		return nil
	}
	return c.resize(BaseWidth + PanelWidth)
}

// resize makes exactly one attempt. The panel state is left as set even
// when it fails.
func (c *Coordinator) resize(width float32) error {
	if err := c.resizer.Resize(width, WindowHeight); err != nil {
		logrus.WithError(err).WithField("width", width).Warn("failed to resize window")
		return fmt.Errorf("%w: %v", ErrWindow, err)
	}
	return nil
}
