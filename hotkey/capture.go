// Package hotkey records, validates and registers the global shortcut that
// toggles the overlay window.
//
// Maintenance notes:
//   - Machine is not safe for concurrent use. The application calls it only
//     from its command loop; OS callbacks are forwarded there as commands.
//   - At most one OS registration exists at a time. StartRecording releases
//     it and every path out of Recording (commit, cancel, failed commit)
//     re-registers exactly one binding.
//   - Decide is pure. Persisting a committed binding is the caller's job,
//     after HandleKey reports Committed.
package hotkey

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultBinding is used when nothing has been persisted yet.
const DefaultBinding = "F2"

var (
	// ErrRegistrationConflict means the OS refused the key combination,
	// usually because another application owns it.
	ErrRegistrationConflict = errors.New("hotkey registration conflict")
	// ErrInvalidKey is returned for keys that cannot be bound.
	ErrInvalidKey = errors.New("invalid hotkey")
	// ErrNotRecording is returned when key events arrive outside a capture.
	ErrNotRecording = errors.New("hotkey capture not in progress")
)

// Registrar registers global shortcuts with the operating system.
type Registrar interface {
	Register(binding string, callback func()) error
	Unregister(binding string) error
}

// Binding is the persisted toggle shortcut.
type Binding struct {
	Key    string
	Paused bool
}

// CaptureState is the capture machine state.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureRecording
	CaptureCommitted
	CaptureCancelled
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureRecording:
		return "recording"
	case CaptureCommitted:
		return "committed"
	case CaptureCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Action is what Decide wants done with a key event.
type Action int

const (
	ActionPreview Action = iota
	ActionReject
	ActionCancel
	ActionCommit
)

// Decision is the pure result of classifying one key-down while recording.
type Decision struct {
	Action  Action
	Preview string
	Binding string
}

// Decide classifies a key-down received while recording. Escape cancels even
// when modifiers are held.
func Decide(e KeyEvent) Decision {
	if NormalizeKey(e.Key) == KeyEscape {
		return Decision{Action: ActionCancel}
	}
	if e.IsModifier() {
		return Decision{Action: ActionPreview, Preview: Preview(e)}
	}
	binding, ok := BuildBinding(e)
	if !ok {
		return Decision{Action: ActionReject, Preview: Preview(e)}
	}
	return Decision{Action: ActionCommit, Binding: binding}
}

type activation int

const (
	notActivated activation = iota
	activating
	activated
)

// Machine owns the Binding and its OS registration.
type Machine struct {
	reg      Registrar
	callback func()
	binding  Binding
	state    CaptureState
	preview  string
	init     activation
}

// NewMachine creates a machine for the persisted binding. An empty key
// falls back to DefaultBinding. callback runs when the OS reports the
// shortcut.
func NewMachine(reg Registrar, key string, callback func()) *Machine {
	if key == "" {
		key = DefaultBinding
	}
	return &Machine{
		reg:      reg,
		callback: callback,
		binding:  Binding{Key: key, Paused: true},
	}
}

// Binding returns the current binding.
func (m *Machine) Binding() Binding {
	return m.binding
}

// State returns the capture state.
func (m *Machine) State() CaptureState {
	return m.state
}

// Preview returns the live modifier preview while recording.
func (m *Machine) Preview() string {
	return m.preview
}

// Activate registers the persisted binding. Only the first call does
// anything.
func (m *Machine) Activate() error {
	if m.init != notActivated {
		return nil
	}
	m.init = activating
	if err := m.reg.Register(m.binding.Key, m.callback); err != nil {
		m.init = notActivated
		return fmt.Errorf("%w: %s: %v", ErrRegistrationConflict, m.binding.Key, err)
	}
	m.binding.Paused = false
	m.init = activated
	logrus.WithField("hotkey", m.binding.Key).Info("global hotkey registered")
	return nil
}

// StartRecording releases the active registration so the keys pressed
// during capture do not fire the old binding.
func (m *Machine) StartRecording() error {
	if m.state == CaptureRecording {
		return nil
	}
	if err := m.pause(); err != nil {
		return err
	}
	m.state = CaptureRecording
	m.preview = ""
	return nil
}

// HandleKey feeds one key-down into an active capture. It returns the
// decision taken; a commit that the OS refuses reverts the binding and
// returns ErrRegistrationConflict, an unbindable key returns ErrInvalidKey
// and keeps recording.
func (m *Machine) HandleKey(e KeyEvent) (Decision, error) {
	if m.state != CaptureRecording {
		return Decision{}, ErrNotRecording
	}

	d := Decide(e)
	switch d.Action {
	case ActionCancel:
		return d, m.Cancel()
	case ActionPreview:
		m.preview = d.Preview
		return d, nil
	case ActionReject:
		return d, fmt.Errorf("%w: %s%s", ErrInvalidKey, d.Preview, NormalizeKey(e.Key))
	}
	return d, m.commit(d.Binding)
}

// Cancel leaves Recording and restores the previous binding.
func (m *Machine) Cancel() error {
	if m.state != CaptureRecording {
		return ErrNotRecording
	}
	m.state = CaptureCancelled
	m.preview = ""
	return m.resume()
}

func (m *Machine) commit(key string) error {
	m.preview = ""
	if key == m.binding.Key {
		m.state = CaptureCommitted
		return m.resume()
	}

	if err := m.reg.Register(key, m.callback); err != nil {
		logrus.WithError(err).WithField("hotkey", key).Warn("hotkey registration failed, restoring previous binding")
		m.state = CaptureCancelled
		if rerr := m.resume(); rerr != nil {
			return errors.Join(fmt.Errorf("%w: %s: %v", ErrRegistrationConflict, key, err), rerr)
		}
		return fmt.Errorf("%w: %s: %v", ErrRegistrationConflict, key, err)
	}

	m.binding = Binding{Key: key}
	m.state = CaptureCommitted
	m.init = activated
	logrus.WithField("hotkey", key).Info("global hotkey changed")
	return nil
}

func (m *Machine) pause() error {
	if m.binding.Paused {
		return nil
	}
	if err := m.reg.Unregister(m.binding.Key); err != nil {
		return fmt.Errorf("pause hotkey %s: %w", m.binding.Key, err)
	}
	m.binding.Paused = true
	return nil
}

func (m *Machine) resume() error {
	if !m.binding.Paused {
		return nil
	}
	if err := m.reg.Register(m.binding.Key, m.callback); err != nil {
		logrus.WithError(err).WithField("hotkey", m.binding.Key).Error("failed to resume hotkey")
		return fmt.Errorf("%w: resume %s: %v", ErrRegistrationConflict, m.binding.Key, err)
	}
	m.binding.Paused = false
	m.init = activated
	return nil
}

// Release unregisters the active binding. Used on process exit.
func (m *Machine) Release() error {
	if m.state == CaptureRecording {
		m.state = CaptureCancelled
		m.preview = ""
	}
	return m.pause()
}
