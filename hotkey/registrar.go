package hotkey

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.design/x/hotkey"
)

// commonKeys are available on every supported platform.
var commonKeys = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
	"Delete":     hotkey.KeyDelete,
	"ArrowLeft":  hotkey.KeyLeft,
	"ArrowRight": hotkey.KeyRight,
	"ArrowUp":    hotkey.KeyUp,
	"ArrowDown":  hotkey.KeyDown,
}

type registration struct {
	hk   *hotkey.Hotkey
	stop chan struct{}
}

// OSRegistrar registers shortcuts system-wide through golang.design/x/hotkey.
// Each registration gets a goroutine forwarding key-downs to its callback.
type OSRegistrar struct {
	mu     sync.Mutex
	active map[string]*registration
}

// NewOSRegistrar returns an empty registrar.
func NewOSRegistrar() *OSRegistrar {
	return &OSRegistrar{active: make(map[string]*registration)}
}

// Register installs binding. Parse failures and OS refusals both wrap
// ErrRegistrationConflict.
func (r *OSRegistrar) Register(binding string, callback func()) error {
	mods, key, err := parseBinding(binding)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[binding]; ok {
		return fmt.Errorf("%w: %s already registered", ErrRegistrationConflict, binding)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRegistrationConflict, binding, err)
	}

	reg := &registration{hk: hk, stop: make(chan struct{})}
	r.active[binding] = reg
	go forward(reg, callback)
	return nil
}

// Unregister removes binding. Unknown bindings are ignored.
func (r *OSRegistrar) Unregister(binding string) error {
	r.mu.Lock()
	reg, ok := r.active[binding]
	delete(r.active, binding)
	r.mu.Unlock()
	if !ok {
		return nil
	}

	close(reg.stop)
	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("unregister %s: %w", binding, err)
	}
	return nil
}

// Close releases every registration.
func (r *OSRegistrar) Close() {
	r.mu.Lock()
	keys := make([]string, 0, len(r.active))
	for k := range r.active {
		keys = append(keys, k)
	}
	r.mu.Unlock()

	for _, k := range keys {
		if err := r.Unregister(k); err != nil {
			logrus.WithError(err).Warn("failed to release hotkey")
		}
	}
}

func forward(reg *registration, callback func()) {
	keydown := reg.hk.Keydown()
	for {
		select {
		case <-reg.stop:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			callback()
		}
	}
}

func parseBinding(binding string) ([]hotkey.Modifier, hotkey.Key, error) {
	tokens, name := SplitBinding(binding)

	key, ok := commonKeys[name]
	if !ok {
		key, ok = platformKeys[name]
	}
	if !ok {
		return nil, 0, fmt.Errorf("%w: key %q is not supported on this platform", ErrRegistrationConflict, name)
	}

	mods := make([]hotkey.Modifier, 0, len(tokens))
	for _, tok := range tokens {
		switch tok {
		case "Ctrl":
			mods = append(mods, hotkey.ModCtrl)
		case "Shift":
			mods = append(mods, hotkey.ModShift)
		case "Alt":
			mods = append(mods, modAlt)
		default:
			return nil, 0, fmt.Errorf("%w: unknown modifier %q", ErrInvalidKey, tok)
		}
	}
	return mods, key, nil
}
