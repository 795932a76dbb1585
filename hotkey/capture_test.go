package hotkey

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrar mimics the OS: a binding can only be held once and keys in
// taken are owned by some other application.
type fakeRegistrar struct {
	active map[string]func()
	taken  map[string]bool
	log    []string
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{active: map[string]func(){}, taken: map[string]bool{}}
}

func (f *fakeRegistrar) Register(binding string, cb func()) error {
	f.log = append(f.log, "register "+binding)
	if f.taken[binding] {
		return errors.New("already registered by another application")
	}
	if _, ok := f.active[binding]; ok {
		return errors.New("duplicate")
	}
	f.active[binding] = cb
	return nil
}

func (f *fakeRegistrar) Unregister(binding string) error {
	f.log = append(f.log, "unregister "+binding)
	delete(f.active, binding)
	return nil
}

func (f *fakeRegistrar) activeKeys() []string {
	keys := make([]string, 0, len(f.active))
	for k := range f.active {
		keys = append(keys, k)
	}
	return keys
}

func activeMachine(t *testing.T, key string) (*Machine, *fakeRegistrar) {
	t.Helper()
	reg := newFakeRegistrar()
	m := NewMachine(reg, key, func() {})
	require.NoError(t, m.Activate())
	return m, reg
}

func TestActivateRegistersOnce(t *testing.T) {
	m, reg := activeMachine(t, "")

	assert.Equal(t, Binding{Key: DefaultBinding}, m.Binding())
	require.NoError(t, m.Activate())
	assert.Equal(t, []string{"register F2"}, reg.log)
}

func TestActivateConflict(t *testing.T) {
	reg := newFakeRegistrar()
	reg.taken["F2"] = true
	m := NewMachine(reg, "F2", func() {})

	err := m.Activate()
	assert.ErrorIs(t, err, ErrRegistrationConflict)
	assert.True(t, m.Binding().Paused)
}

func TestStartRecordingPausesActiveBinding(t *testing.T) {
	m, reg := activeMachine(t, "F2")

	require.NoError(t, m.StartRecording())

	assert.Equal(t, CaptureRecording, m.State())
	assert.True(t, m.Binding().Paused)
	assert.Empty(t, reg.activeKeys())
}

func TestCtrlShiftEscapeCancels(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())

	_, err := m.HandleKey(KeyEvent{Key: KeyControl, Ctrl: true})
	require.NoError(t, err)
	_, err = m.HandleKey(KeyEvent{Key: KeyShift, Ctrl: true, Shift: true})
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Shift+", m.Preview())

	d, err := m.HandleKey(KeyEvent{Key: KeyEscape, Ctrl: true, Shift: true})
	require.NoError(t, err)

	assert.Equal(t, ActionCancel, d.Action)
	assert.Equal(t, CaptureCancelled, m.State())
	assert.Equal(t, Binding{Key: "F2"}, m.Binding())
	assert.Equal(t, []string{"F2"}, reg.activeKeys())
	assert.Empty(t, m.Preview())
}

func TestBareLetterCommits(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())

	d, err := m.HandleKey(KeyEvent{Key: "a"})
	require.NoError(t, err)

	assert.Equal(t, ActionCommit, d.Action)
	assert.Equal(t, "A", d.Binding)
	assert.Equal(t, CaptureCommitted, m.State())
	assert.Equal(t, Binding{Key: "A"}, m.Binding())
	assert.Equal(t, []string{"A"}, reg.activeKeys())
}

func TestCommitWithModifiers(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())

	_, err := m.HandleKey(KeyEvent{Key: "k", Ctrl: true, Alt: true, Shift: true})
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Alt+Shift+K", m.Binding().Key)
	assert.Equal(t, []string{"Ctrl+Alt+Shift+K"}, reg.activeKeys())
}

func TestCommitSameKeyResumes(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())

	_, err := m.HandleKey(KeyEvent{Key: "f2"})
	require.NoError(t, err)

	assert.Equal(t, CaptureCommitted, m.State())
	assert.Equal(t, Binding{Key: "F2"}, m.Binding())
	assert.Equal(t, []string{"F2"}, reg.activeKeys())
}

func TestRejectedKeyKeepsRecording(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())

	for _, e := range []KeyEvent{
		{Key: KeyTab},
		{Key: KeySpace, Ctrl: true},
		{Key: KeyEnter},
		{Key: "/"},
		{Key: KeyCapsLock},
	} {
		d, err := m.HandleKey(e)
		assert.ErrorIs(t, err, ErrInvalidKey, e.Key)
		assert.Equal(t, ActionReject, d.Action)
		assert.Equal(t, CaptureRecording, m.State())
	}
	assert.Empty(t, reg.activeKeys())
}

func TestRegistrationConflictRevertsBinding(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	reg.taken["Ctrl+K"] = true
	require.NoError(t, m.StartRecording())

	_, err := m.HandleKey(KeyEvent{Key: "k", Ctrl: true})

	assert.ErrorIs(t, err, ErrRegistrationConflict)
	assert.Equal(t, CaptureCancelled, m.State())
	assert.Equal(t, Binding{Key: "F2"}, m.Binding())
	assert.Equal(t, []string{"F2"}, reg.activeKeys())
}

func TestCaptureAlwaysEndsWithOneRegistration(t *testing.T) {
	sequences := [][]KeyEvent{
		{{Key: KeyEscape}},
		{{Key: KeyAlt, Alt: true}, {Key: KeyEscape, Alt: true}},
		{{Key: "x"}},
		{{Key: KeyTab}, {Key: "F5"}},
		{{Key: "F9", Shift: true}},
	}
	for _, seq := range sequences {
		m, reg := activeMachine(t, "F2")
		require.NoError(t, m.StartRecording())
		for _, e := range seq {
			_, _ = m.HandleKey(e)
		}
		assert.NotEqual(t, CaptureRecording, m.State())
		assert.Len(t, reg.activeKeys(), 1)
		assert.Equal(t, m.Binding().Key, reg.activeKeys()[0])
	}
}

func TestKeysOutsideRecordingAreIgnored(t *testing.T) {
	m, _ := activeMachine(t, "F2")
	_, err := m.HandleKey(KeyEvent{Key: "a"})
	assert.ErrorIs(t, err, ErrNotRecording)
	assert.ErrorIs(t, m.Cancel(), ErrNotRecording)
}

func TestReleaseUnregisters(t *testing.T) {
	m, reg := activeMachine(t, "F2")
	require.NoError(t, m.StartRecording())
	require.NoError(t, m.Release())

	assert.Equal(t, CaptureCancelled, m.State())
	assert.Empty(t, reg.activeKeys())

	m2, reg2 := activeMachine(t, "F3")
	require.NoError(t, m2.Release())
	assert.Empty(t, reg2.activeKeys())
	assert.True(t, m2.Binding().Paused)
}

type fakeWindow struct {
	shows, hides int
}

func (w *fakeWindow) Show() { w.shows++ }
func (w *fakeWindow) Hide() { w.hides++ }

func TestTogglerDebounce(t *testing.T) {
	win := &fakeWindow{}
	tg := NewToggler(win, 0)
	clock := time.Unix(1000, 0)
	tg.now = func() time.Time { return clock }

	assert.True(t, tg.Toggle())
	assert.False(t, tg.Visible())

	clock = clock.Add(100 * time.Millisecond)
	assert.False(t, tg.Toggle())

	clock = clock.Add(250 * time.Millisecond)
	assert.True(t, tg.Toggle())
	assert.True(t, tg.Visible())

	assert.Equal(t, 1, win.hides)
	assert.Equal(t, 1, win.shows)
}
