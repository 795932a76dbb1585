package poller

import (
	"context"

	"MatchLens/game"
	"MatchLens/session"

	"github.com/sirupsen/logrus"
)

// Initializer is the part of session.Bootstrap the policy depends on.
type Initializer interface {
	Initialize(ctx context.Context) (session.Session, error)
}

// ReconnectPolicy tears the visible state down to "not connected" and runs
// the bootstrap once. Backoff while the provider stays down is the
// bootstrap's own background retry; the policy never loops.
type ReconnectPolicy struct {
	boot     Initializer
	sessions *session.Store
	states   *game.Store
	tracker  *Tracker
}

// NewReconnectPolicy wires a policy to the shared stores.
func NewReconnectPolicy(boot Initializer, sessions *session.Store, states *game.Store, tracker *Tracker) *ReconnectPolicy {
	return &ReconnectPolicy{
		boot:     boot,
		sessions: sessions,
		states:   states,
		tracker:  tracker,
	}
}

// Reconnect publishes {connected:false, Idle}, makes one bootstrap attempt
// and resets the tracker when it succeeds.
func (r *ReconnectPolicy) Reconnect(ctx context.Context) bool {
	r.sessions.SetConnected(false)
	r.states.Publish(game.Idle())

	sess, err := r.boot.Initialize(ctx)
	if err != nil {
		logrus.WithError(err).Warn("reconnect failed, provider retry continues in background")
		return false
	}

	r.tracker.Reset()
	return sess.Connected
}
