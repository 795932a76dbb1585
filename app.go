// Package main contains the application wiring and the AppManager which
// connects the provider, the poller, the hotkey machine, the side panel and
// the UI. This file centralizes the shared application state and the
// command handler the control loop runs.
//
// Maintenance notes / tips:
//   - Concurrency model: every state machine (poller, tracker, hotkey
//     machine, toggler, panel coordinator) is driven only from the control
//     loop goroutine via `handle`. The poll ticker, OS hotkey callbacks,
//     the bootstrap's background retry and the UI all post commands
//     instead of calling into the machines. Do not add direct calls from
//     those goroutines; post a command instead.
//   - The session and match-state stores are atomic and may be read from
//     anywhere. Only the bootstrap, the poller and the reconnect policy
//     publish into them.
//   - `autoLock` and `captureErr` are loop-owned fields. They are read in
//     `viewModel`, which also runs on the loop (as the loop's after hook).
//   - UI refresh happens after every command, not on a timer, so a state
//     change that does not go through the loop will not show until the
//     next command.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MatchLens/config"
	"MatchLens/control"
	"MatchLens/cue"
	"MatchLens/game"
	"MatchLens/hotkey"
	"MatchLens/i18n"
	"MatchLens/metrics"
	"MatchLens/panel"
	"MatchLens/poller"
	"MatchLens/provider"
	"MatchLens/session"
	"MatchLens/settings"
	"MatchLens/ui"

	"fyne.io/fyne/v2"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 2 * time.Second

var errNoPlayer = errors.New("open player: no player given")

// AppManager is the main application struct, holding all state.
type AppManager struct {
	cfg *config.Config

	window    *ui.MainWindow
	settings  *settings.Store
	sessions  *session.Store
	states    *game.Store
	provider  *provider.Client
	boot      *session.Bootstrap
	poller    *poller.Poller
	registrar hotkey.Registrar
	machine   *hotkey.Machine
	toggler   *hotkey.Toggler
	panels    *panel.Coordinator
	metrics   *metrics.Collector
	server    *metrics.Server
	cues      *cue.Cues

	loop   *control.Loop
	ctx    context.Context
	cancel context.CancelFunc

	autoLock   *string
	captureErr string
}

// NewAppManager builds every component and the main window. Nothing runs
// until Start.
func NewAppManager(cfg *config.Config, fyneApp fyne.App, reg hotkey.Registrar) (*AppManager, error) {
	client, err := provider.New(provider.Options{
		BaseURL:       cfg.ProviderURL,
		InsecureTLS:   cfg.ProviderInsecureTLS,
		HeaderTimeout: cfg.ProviderHeaderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	a := &AppManager{
		cfg:       cfg,
		settings:  settings.NewStore(fyneApp.Preferences()),
		sessions:  session.NewStore(),
		states:    game.NewStore(),
		provider:  client,
		registrar: reg,
		metrics:   metrics.NewCollector(),
		cues:      cue.New(cfg.SoundCues),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.loop = control.NewLoop(a.handle, a.afterCommand)

	if lang := a.settings.Locale(); lang != "" {
		i18n.SetLang(lang)
	} else {
		i18n.SetLang(i18n.Detect(cfg.Lang))
	}
	a.autoLock = a.settings.AutoLockAgent()

	a.boot = session.NewBootstrap(client, a.sessions,
		session.WithRetryDelay(cfg.RetryDelay),
		session.WithRecoverHook(func(session.Session) {
			a.EnqueueCommand(control.Command{Type: control.CmdSessionReady})
		}),
	)

	tracker := poller.NewTracker(cfg.DegradedThreshold)
	a.poller = poller.New(poller.Config{
		Fetcher:  client,
		Sessions: a.sessions,
		States:   a.states,
		Tracker:  tracker,
		Policy:   poller.NewReconnectPolicy(a.boot, a.sessions, a.states, tracker),
		Interval: cfg.PollInterval,
		Observer: a.metrics,
		// The provider forgets the agent when its session restarts.
		OnReconnect: a.syncAutoLock,
	})

	a.machine = hotkey.NewMachine(reg, a.settings.Hotkey(), func() {
		a.EnqueueCommand(control.Command{Type: control.CmdToggleWindow})
	})

	a.window = ui.CreateMainWindow(a, fyneApp)
	a.panels = panel.NewCoordinator(&observedResizer{
		next:    &ui.WindowResizer{Window: a.window.Window},
		metrics: a.metrics,
	})
	a.toggler = hotkey.NewToggler(&ui.WindowVisibility{Window: a.window.Window}, cfg.ToggleDebounce)

	if cfg.MetricsPort > 0 {
		a.server = metrics.NewServer(cfg.MetricsPort, "/metrics")
		a.server.Setup(a.metrics)
	}
	return a, nil
}

// Start launches the control loop, the startup command and the poll
// ticker.
func (a *AppManager) Start() {
	if a.server != nil {
		if err := a.server.Start(); err != nil {
			logrus.WithError(err).Warn("metrics disabled")
			a.server = nil
		}
	}

	go a.loop.Run(a.ctx)
	a.EnqueueCommand(control.Command{Type: control.CmdStartup})
	go a.poller.Run(a.ctx, func() {
		a.EnqueueCommand(control.Command{Type: control.CmdPoll})
	})
}

// EnqueueCommand posts a command to the control loop without waiting for
// it to run.
func (a *AppManager) EnqueueCommand(cmd control.Command) {
	_ = a.loop.Enqueue(cmd)
}

func (a *AppManager) handle(ctx context.Context, cmd control.Command) error {
	switch cmd.Type {
	case control.CmdStartup:
		return a.startup(ctx)
	case control.CmdPoll:
		a.poller.Poll(ctx)
	case control.CmdReconnect:
		if !a.poller.Reconnect(ctx) {
			return fmt.Errorf("manual reconnect: %w", session.ErrProviderUnreachable)
		}
	case control.CmdSessionReady:
		a.poller.SessionReady()
		a.syncAutoLock(ctx)
	case control.CmdSetAutoLock:
		return a.setAutoLock(ctx, cmd.Agent)
	case control.CmdStartCapture:
		a.captureErr = ""
		return a.machine.StartRecording()
	case control.CmdCaptureKey:
		return a.captureKey(cmd.Key)
	case control.CmdCancelCapture:
		if err := a.machine.Cancel(); err != nil {
			return err
		}
		a.metrics.ObserveCapture("cancelled")
	case control.CmdToggleWindow:
		if a.toggler.Toggle() {
			a.metrics.ObserveToggle()
		}
	case control.CmdOpenSettings:
		return a.panels.OpenSettings()
	case control.CmdOpenPlayer:
		if cmd.Player == nil {
			return errNoPlayer
		}
		return a.panels.OpenPlayer(*cmd.Player)
	case control.CmdClosePanel:
		return a.panels.Close()
	case control.CmdSetLocale:
		i18n.SetLang(cmd.Locale)
		a.settings.SetLocale(i18n.GetLang())
	case control.CmdShutdown:
		return a.machine.Release()
	default:
		return fmt.Errorf("unknown command %s", cmd.Type)
	}
	return nil
}

// startup registers the persisted hotkey and makes the first provider
// attempt. A failed attempt leaves the bootstrap retrying in the background.
func (a *AppManager) startup(ctx context.Context) error {
	if err := a.machine.Activate(); err != nil {
		a.captureErr = i18n.T("Hotkey already in use")
		logrus.WithError(err).Warn("toggle hotkey not registered")
	}

	if _, err := a.boot.Initialize(ctx); err != nil {
		logrus.WithError(err).Info("provider not ready yet")
		return nil
	}
	a.syncAutoLock(ctx)
	a.poller.Poll(ctx)
	return nil
}

func (a *AppManager) captureKey(key hotkey.KeyEvent) error {
	d, err := a.machine.HandleKey(key)
	switch {
	case errors.Is(err, hotkey.ErrRegistrationConflict):
		a.captureErr = i18n.T("Hotkey already in use")
		a.metrics.ObserveCapture("conflict")
		return err
	case err != nil:
		return err
	case d.Action == hotkey.ActionCancel:
		a.metrics.ObserveCapture("cancelled")
	case a.machine.State() == hotkey.CaptureCommitted:
		a.captureErr = ""
		a.settings.SetHotkey(a.machine.Binding().Key)
		a.metrics.ObserveCapture("committed")
	}
	return nil
}

func (a *AppManager) setAutoLock(ctx context.Context, agent *string) error {
	if err := a.provider.SetAutoLockAgent(ctx, agent); err != nil {
		return fmt.Errorf("set auto-lock agent: %w", err)
	}
	a.autoLock = agent
	a.settings.SetAutoLockAgent(agent)
	return nil
}

// syncAutoLock re-sends the persisted agent after a new provider session,
// since the provider does not keep it across restarts.
func (a *AppManager) syncAutoLock(ctx context.Context) {
	if a.autoLock == nil {
		return
	}
	if err := a.provider.SetAutoLockAgent(ctx, a.autoLock); err != nil {
		logrus.WithError(err).Warn("failed to restore auto-lock agent")
	}
}

func (a *AppManager) afterCommand(control.Command) {
	vm := a.viewModel()
	a.cues.Observe(vm.Session.Connected)
	a.window.Update(vm)
}

func (a *AppManager) viewModel() ui.ViewModel {
	return ui.ViewModel{
		Session:    a.sessions.Load(),
		Match:      a.states.Load(),
		Binding:    a.machine.Binding(),
		Capture:    a.machine.State(),
		Preview:    a.machine.Preview(),
		CaptureErr: a.captureErr,
		Panel:      a.panels.State(),
		AutoLock:   a.autoLock,
		Lang:       i18n.GetLang(),
	}
}

// Shutdown stops polling, releases the hotkey through the loop, stops the
// loop and the metrics server. Safe to call once the fyne main loop has
// exited.
func (a *AppManager) Shutdown() {
	a.poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.loop.Do(ctx, control.Command{Type: control.CmdShutdown}); err != nil {
		logrus.WithError(err).Warn("hotkey release did not complete")
	}
	a.cancel()

	if c, ok := a.registrar.(interface{ Close() }); ok {
		c.Close()
	}
	if a.server != nil {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := a.server.Shutdown(sctx); err != nil {
			logrus.WithError(err).Warn("metrics server shutdown failed")
		}
	}
}

// observedResizer counts panel-driven resizes.
type observedResizer struct {
	next    panel.Resizer
	metrics *metrics.Collector
}

func (r *observedResizer) Resize(width, height float32) error {
	err := r.next.Resize(width, height)
	r.metrics.ObserveResize(err == nil)
	return err
}
