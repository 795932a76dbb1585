// Package poller drives the provider polling cycle: a fixed-interval ticker,
// the classification of each fetch, the failure tracker and the reconnect
// policy that fires when the tracker turns Degraded.
//
// Maintenance notes:
//   - Poll and Reconnect are meant to run on the application command loop.
//     Run only produces ticks; it never fetches on its own goroutine, so a
//     reconnect always completes before the next queued tick is handled.
//   - Stop is idempotent. Once it has been called every later Poll is a
//     no-op, which covers ticks that were already queued when teardown began.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"MatchLens/game"
	"MatchLens/session"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is the regular poll cadence.
const DefaultInterval = 3 * time.Second

// Fetcher reads the current match state from the provider.
type Fetcher interface {
	FetchMatchState(ctx context.Context) (game.MatchState, error)
}

// Outcome classifies one poll cycle.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransportError
	OutcomeSoftDisconnect
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeSoftDisconnect:
		return "soft_disconnect"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Observer receives poll bookkeeping, typically the metrics collector.
type Observer interface {
	ObservePoll(outcome string)
	ObserveReconnect(ok bool)
	SetHealthCounter(n int)
}

type nopObserver struct{}

func (nopObserver) ObservePoll(string)    {}
func (nopObserver) ObserveReconnect(bool) {}
func (nopObserver) SetHealthCounter(int)  {}

// Poller owns the polling subsystem's state transitions.
type Poller struct {
	fetcher  Fetcher
	sessions *session.Store
	states   *game.Store
	tracker  *Tracker
	policy   *ReconnectPolicy
	interval time.Duration
	observer Observer
	onReady  func(ctx context.Context)

	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}
}

// Config groups the Poller's collaborators.
type Config struct {
	Fetcher  Fetcher
	Sessions *session.Store
	States   *game.Store
	Tracker  *Tracker
	Policy   *ReconnectPolicy
	Interval time.Duration
	Observer Observer
	// OnReconnect runs after every successful reconnect, automatic or
	// manual, before the forced poll.
	OnReconnect func(ctx context.Context)
}

// New creates a Poller. Zero Interval means DefaultInterval.
func New(cfg Config) *Poller {
	p := &Poller{
		fetcher:  cfg.Fetcher,
		sessions: cfg.Sessions,
		states:   cfg.States,
		tracker:  cfg.Tracker,
		policy:   cfg.Policy,
		interval: cfg.Interval,
		observer: cfg.Observer,
		onReady:  cfg.OnReconnect,
		done:     make(chan struct{}),
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	if p.tracker == nil {
		p.tracker = NewTracker(DefaultDegradedThreshold)
	}
	return p
}

// Tracker exposes the failure tracker.
func (p *Poller) Tracker() *Tracker {
	return p.tracker
}

// Interval returns the regular cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run calls tick every interval until ctx is done or Stop is called. tick is
// expected to hand the poll over to the command loop.
func (p *Poller) Run(ctx context.Context, tick func()) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			if p.stopped.Load() {
				return
			}
			tick()
		}
	}
}

// Stop cancels the ticker. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.done)
	})
}

// Stopped reports whether Stop has been called.
func (p *Poller) Stopped() bool {
	return p.stopped.Load()
}

// Poll runs one fetch and applies its outcome. A failure that pushes the
// tracker into Degraded runs the reconnect path before returning.
func (p *Poller) Poll(ctx context.Context) Outcome {
	if p.stopped.Load() {
		return OutcomeSkipped
	}

	outcome := OutcomeSuccess
	crossed := false

	state, err := p.fetcher.FetchMatchState(ctx)
	switch {
	case err != nil:
		outcome = OutcomeTransportError
		crossed = p.tracker.RecordFailure()
		logrus.WithError(err).WithField("failures", p.tracker.Count()).Debug("match state fetch failed")
	case state.Kind == game.KindDisconnected:
		outcome = OutcomeSoftDisconnect
		crossed = p.tracker.RecordFailure()
		logrus.WithField("failures", p.tracker.Count()).Debug("provider reports no active session")
	default:
		p.states.Publish(state)
		p.tracker.Reset()
		if !p.sessions.Load().Connected {
			p.sessions.SetConnected(true)
		}
	}

	p.observer.ObservePoll(outcome.String())
	p.observer.SetHealthCounter(p.tracker.Count())

	if crossed {
		logrus.WithField("failures", p.tracker.Count()).Warn("provider connection degraded, reconnecting")
		p.Reconnect(ctx)
	}
	return outcome
}

// Reconnect runs the reconnect policy and, when the bootstrap succeeds,
// forces one poll right away instead of waiting for the next tick.
func (p *Poller) Reconnect(ctx context.Context) bool {
	if p.stopped.Load() {
		return false
	}
	ok := p.policy.Reconnect(ctx)
	p.observer.ObserveReconnect(ok)
	p.observer.SetHealthCounter(p.tracker.Count())
	if ok {
		if p.onReady != nil {
			p.onReady(ctx)
		}
		p.Poll(ctx)
	}
	return ok
}

// SessionReady is called when the bootstrap's background retry lands a
// session; it counts as a successful reconnect.
func (p *Poller) SessionReady() {
	p.tracker.Reset()
	p.observer.SetHealthCounter(0)
}
