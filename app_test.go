package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MatchLens/config"
	"MatchLens/control"
	"MatchLens/game"
	"MatchLens/hotkey"
	"MatchLens/panel"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	down     atomic.Bool
	state    string
	restored string // served by /state once a new session starts
	agents   []*string
	sessions atomic.Int32
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.down.Load() {
		http.Error(w, "down", http.StatusServiceUnavailable)
		return
	}
	switch r.URL.Path {
	case "/session":
		p.sessions.Add(1)
		p.mu.Lock()
		if p.restored != "" {
			p.state, p.restored = p.restored, ""
		}
		p.mu.Unlock()
		_, _ = w.Write([]byte(`{"connected":true,"region":"na"}`))
	case "/state":
		p.mu.Lock()
		defer p.mu.Unlock()
		_, _ = w.Write([]byte(p.state))
	case "/autolock":
		var body struct {
			Agent *string `json:"agent"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.mu.Lock()
		p.agents = append(p.agents, body.Agent)
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

type memRegistrar struct {
	active map[string]bool
	taken  map[string]bool
}

func newMemRegistrar() *memRegistrar {
	return &memRegistrar{active: map[string]bool{}, taken: map[string]bool{}}
}

func (r *memRegistrar) Register(binding string, _ func()) error {
	if r.taken[binding] {
		return errors.New("owned by another application")
	}
	r.active[binding] = true
	return nil
}

func (r *memRegistrar) Unregister(binding string) error {
	delete(r.active, binding)
	return nil
}

type resizeLog struct{ widths []float32 }

func (r *resizeLog) Resize(w, _ float32) error {
	r.widths = append(r.widths, w)
	return nil
}

type fakeWindow struct{ shows, hides int }

func (w *fakeWindow) Show() { w.shows++ }
func (w *fakeWindow) Hide() { w.hides++ }

type harness struct {
	app      *AppManager
	provider *fakeProvider
	reg      *memRegistrar
	resizes  *resizeLog
	window   *fakeWindow
	ctx      context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fp := &fakeProvider{state: `{"state":"idle"}`}
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ProviderURL:           srv.URL,
		ProviderHeaderTimeout: time.Second,
		PollInterval:          time.Hour,
		RetryDelay:            10 * time.Millisecond,
		DegradedThreshold:     3,
		ToggleDebounce:        time.Hour,
		LogLevel:              "info",
		LogFormat:             "text",
	}
	reg := newMemRegistrar()
	a, err := NewAppManager(cfg, test.NewTempApp(t), reg)
	require.NoError(t, err)
	t.Cleanup(a.cancel)

	h := &harness{app: a, provider: fp, reg: reg, resizes: &resizeLog{}, window: &fakeWindow{}, ctx: a.ctx}
	a.panels = panel.NewCoordinator(h.resizes)
	a.toggler = hotkey.NewToggler(h.window, cfg.ToggleDebounce)
	return h
}

func (h *harness) run(t *testing.T, cmd control.Command) error {
	t.Helper()
	return h.app.handle(h.ctx, cmd)
}

func TestStartupConnectsAndRegistersHotkey(t *testing.T) {
	h := newHarness(t)
	h.provider.state = `{"state":"ingame","match_id":"m","map_name":"Bind","allies":[{"puuid":"a","name":"A"}],"enemies":[]}`

	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))

	assert.True(t, h.app.sessions.Load().Connected)
	assert.Equal(t, "na", h.app.sessions.Load().Region)
	assert.Equal(t, game.KindIngame, h.app.states.Load().Kind)
	assert.True(t, h.reg.active["F2"])
	assert.False(t, h.app.machine.Binding().Paused)
}

func TestStartupWithProviderDownKeepsRetrying(t *testing.T) {
	h := newHarness(t)
	h.provider.down.Store(true)

	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))
	assert.False(t, h.app.sessions.Load().Connected)

	h.provider.down.Store(false)
	require.Eventually(t, func() bool {
		return h.app.sessions.Load().Connected
	}, 2*time.Second, 5*time.Millisecond)
}

func TestFailureStreakReconnects(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))
	before := h.provider.sessions.Load()

	h.provider.down.Store(true)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.run(t, control.Command{Type: control.CmdPoll}))
	}

	assert.False(t, h.app.sessions.Load().Connected)
	assert.Equal(t, game.KindIdle, h.app.states.Load().Kind)
	assert.Equal(t, before, h.provider.sessions.Load(), "session endpoint is down too")
	assert.Equal(t, 3, h.app.poller.Tracker().Count())
}

func TestFailureStreakReconnectsAndRestoresAutoLock(t *testing.T) {
	h := newHarness(t)
	agent := "Killjoy"
	require.NoError(t, h.run(t, control.Command{Type: control.CmdSetAutoLock, Agent: &agent}))
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))
	require.Len(t, h.provider.agents, 2)
	before := h.provider.sessions.Load()

	h.provider.mu.Lock()
	h.provider.state = `{"state":"disconnected"}`
	h.provider.restored = `{"state":"ingame","match_id":"m","map_name":"Bind","allies":[],"enemies":[]}`
	h.provider.mu.Unlock()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.run(t, control.Command{Type: control.CmdPoll}))
	}

	assert.Equal(t, before+1, h.provider.sessions.Load())
	assert.True(t, h.app.sessions.Load().Connected)
	assert.Equal(t, game.KindIngame, h.app.states.Load().Kind, "forced poll after reconnect")
	assert.Equal(t, 0, h.app.poller.Tracker().Count())

	h.provider.mu.Lock()
	defer h.provider.mu.Unlock()
	require.Len(t, h.provider.agents, 3)
	require.NotNil(t, h.provider.agents[2])
	assert.Equal(t, "Killjoy", *h.provider.agents[2])
}

func TestManualReconnect(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))

	require.NoError(t, h.run(t, control.Command{Type: control.CmdReconnect}))
	assert.True(t, h.app.sessions.Load().Connected)
	assert.Empty(t, h.provider.agents, "no agent chosen, nothing to restore")

	h.provider.down.Store(true)
	assert.Error(t, h.run(t, control.Command{Type: control.CmdReconnect}))
}

func TestHotkeyCapturePersistsCommittedBinding(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))

	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartCapture}))
	assert.False(t, h.reg.active["F2"])

	require.NoError(t, h.run(t, control.Command{Type: control.CmdCaptureKey, Key: hotkey.KeyEvent{Key: "Control", Ctrl: true}}))
	assert.Equal(t, "Ctrl+", h.app.viewModel().Preview)

	require.NoError(t, h.run(t, control.Command{Type: control.CmdCaptureKey, Key: hotkey.KeyEvent{Key: "K", Ctrl: true}}))
	assert.Equal(t, "Ctrl+K", h.app.settings.Hotkey())
	assert.True(t, h.reg.active["Ctrl+K"])
}

func TestHotkeyConflictKeepsOldBinding(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))
	h.reg.taken["F9"] = true

	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartCapture}))
	err := h.run(t, control.Command{Type: control.CmdCaptureKey, Key: hotkey.KeyEvent{Key: "F9"}})

	assert.ErrorIs(t, err, hotkey.ErrRegistrationConflict)
	assert.Equal(t, "F2", h.app.settings.Hotkey())
	assert.True(t, h.reg.active["F2"])
	assert.NotEmpty(t, h.app.viewModel().CaptureErr)
}

func TestAutoLockForwardedAndPersisted(t *testing.T) {
	h := newHarness(t)
	agent := "Killjoy"

	require.NoError(t, h.run(t, control.Command{Type: control.CmdSetAutoLock, Agent: &agent}))
	require.NotNil(t, h.app.settings.AutoLockAgent())
	assert.Equal(t, "Killjoy", *h.app.settings.AutoLockAgent())

	require.NoError(t, h.run(t, control.Command{Type: control.CmdSetAutoLock}))
	assert.Nil(t, h.app.viewModel().AutoLock)

	require.Len(t, h.provider.agents, 2)
	assert.Equal(t, "Killjoy", *h.provider.agents[0])
	assert.Nil(t, h.provider.agents[1])
}

func TestAutoLockFailureKeepsPreviousValue(t *testing.T) {
	h := newHarness(t)
	h.provider.down.Store(true)
	agent := "Raze"

	assert.Error(t, h.run(t, control.Command{Type: control.CmdSetAutoLock, Agent: &agent}))
	assert.Nil(t, h.app.viewModel().AutoLock)
}

func TestPanelCommands(t *testing.T) {
	h := newHarness(t)
	p := game.PlayerSnapshot{PUUID: "x", Name: "X"}

	require.NoError(t, h.run(t, control.Command{Type: control.CmdOpenPlayer, Player: &p}))
	require.NoError(t, h.run(t, control.Command{Type: control.CmdOpenSettings}))
	require.NoError(t, h.run(t, control.Command{Type: control.CmdClosePanel}))

	assert.Equal(t, []float32{panel.BaseWidth + panel.PanelWidth, panel.BaseWidth}, h.resizes.widths)
	assert.ErrorIs(t, h.run(t, control.Command{Type: control.CmdOpenPlayer}), errNoPlayer)
}

func TestToggleIsDebounced(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, control.Command{Type: control.CmdToggleWindow}))
	require.NoError(t, h.run(t, control.Command{Type: control.CmdToggleWindow}))

	assert.Equal(t, 1, h.window.hides)
	assert.Equal(t, 0, h.window.shows)
}

func TestSetLocalePersists(t *testing.T) {
	h := newHarness(t)
	t.Cleanup(func() { _ = h.run(t, control.Command{Type: control.CmdSetLocale, Locale: "en"}) })

	require.NoError(t, h.run(t, control.Command{Type: control.CmdSetLocale, Locale: "tr"}))
	assert.Equal(t, "tr", h.app.settings.Locale())
	assert.Equal(t, "tr", h.app.viewModel().Lang)
}

func TestShutdownCommandReleasesHotkey(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, control.Command{Type: control.CmdStartup}))

	require.NoError(t, h.run(t, control.Command{Type: control.CmdShutdown}))
	assert.Empty(t, h.reg.active)
}
