// Package settings persists the user's choices in fyne's preferences store:
// the toggle hotkey, the UI language and the auto-lock agent. Window position
// is not stored: fyne v2.6 has no API to read or move a window.
//
// Maintenance notes:
//   - Keys are namespaced with "matchlens." so they do not collide with
//     anything fyne itself stores for the app ID.
//   - The store is read during startup and written from the command loop
//     after a change has been committed; it never drives state itself.
package settings

import (
	"MatchLens/hotkey"
	"MatchLens/i18n"
)

const (
	keyHotkey   = "matchlens.hotkey"
	keyLocale   = "matchlens.locale"
	keyAutoLock = "matchlens.autolock_agent"
)

// Preferences is the subset of fyne.Preferences the store uses.
type Preferences interface {
	StringWithFallback(key, fallback string) string
	SetString(key, value string)
	RemoveValue(key string)
}

type Store struct {
	prefs Preferences
}

func NewStore(p Preferences) *Store {
	return &Store{prefs: p}
}

// Hotkey returns the saved toggle binding, or hotkey.DefaultBinding.
func (s *Store) Hotkey() string {
	if k := s.prefs.StringWithFallback(keyHotkey, ""); k != "" {
		return k
	}
	return hotkey.DefaultBinding
}

func (s *Store) SetHotkey(key string) {
	s.prefs.SetString(keyHotkey, key)
}

// Locale returns the saved UI language, or "" when the user never chose one.
func (s *Store) Locale() string {
	return s.prefs.StringWithFallback(keyLocale, "")
}

func (s *Store) SetLocale(lang string) {
	for _, l := range i18n.Supported {
		if l == lang {
			s.prefs.SetString(keyLocale, lang)
			return
		}
	}
	s.prefs.RemoveValue(keyLocale)
}

// AutoLockAgent returns the last agent forwarded to the provider, nil when
// auto-lock is off.
func (s *Store) AutoLockAgent() *string {
	a := s.prefs.StringWithFallback(keyAutoLock, "")
	if a == "" {
		return nil
	}
	return &a
}

func (s *Store) SetAutoLockAgent(agent *string) {
	if agent == nil || *agent == "" {
		s.prefs.RemoveValue(keyAutoLock)
		return
	}
	s.prefs.SetString(keyAutoLock, *agent)
}
