package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// DefaultRetryDelay is the fixed pause between background attempts.
const DefaultRetryDelay = 5 * time.Second

// Initializer asks the provider for a new session.
type Initializer interface {
	InitializeSession(ctx context.Context) (Session, error)
}

// InitState tracks Bootstrap's one-time setup.
type InitState int32

const (
	Uninitialized InitState = iota
	Initializing
	Ready
)

func (s InitState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Bootstrap establishes the provider session. A failed attempt returns
// immediately and leaves a single background retry loop running at a fixed
// delay until the provider answers or the context passed to Initialize is
// cancelled.
type Bootstrap struct {
	init       Initializer
	store      *Store
	retryDelay time.Duration
	onRecover  func(Session)

	state    atomic.Int32
	mu       sync.Mutex
	retrying bool
	attempts atomic.Int64
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(b *Bootstrap) { b.retryDelay = d }
}

// WithRecoverHook registers a callback run when the background retry loop
// lands a session. Direct Initialize callers see the result themselves.
func WithRecoverHook(fn func(Session)) Option {
	return func(b *Bootstrap) { b.onRecover = fn }
}

// NewBootstrap creates a Bootstrap publishing into store.
func NewBootstrap(init Initializer, store *Store, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		init:       init,
		store:      store,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current init state.
func (b *Bootstrap) State() InitState {
	return InitState(b.state.Load())
}

// Attempts returns how many times the provider has been asked for a session.
func (b *Bootstrap) Attempts() int64 {
	return b.attempts.Load()
}

// Initialize makes one attempt. On failure it publishes a disconnected
// session, starts the background retry loop if none is running and returns
// an error wrapping ErrProviderUnreachable.
func (b *Bootstrap) Initialize(ctx context.Context) (Session, error) {
	sess, err := b.attempt(ctx)
	if err == nil {
		return sess, nil
	}

	b.store.SetConnected(false)
	b.state.Store(int32(Initializing))
	b.startRetry(ctx)
	return Session{}, err
}

func (b *Bootstrap) attempt(ctx context.Context) (Session, error) {
	b.attempts.Add(1)
	sess, err := b.init.InitializeSession(ctx)
	if err != nil {
		if !errors.Is(err, ErrProviderUnreachable) {
			err = fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
		}
		return Session{}, err
	}

	sess.Connected = true
	b.store.Publish(sess)
	b.state.Store(int32(Ready))
	logrus.WithField("region", sess.Region).Info("provider session established")
	return sess, nil
}

func (b *Bootstrap) startRetry(ctx context.Context) {
	b.mu.Lock()
	if b.retrying {
		b.mu.Unlock()
		return
	}
	b.retrying = true
	b.mu.Unlock()

	go b.retryLoop(ctx)
}

func (b *Bootstrap) retryLoop(ctx context.Context) {
	defer func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// A direct Initialize that failed after op returned found retrying
		// still set and started nothing, so keep going.
		if b.State() == Initializing && ctx.Err() == nil {
			go b.retryLoop(ctx)
			return
		}
		b.retrying = false
	}()

	// The first background attempt also waits a full delay.
	wait := time.NewTimer(b.retryDelay)
	select {
	case <-ctx.Done():
		wait.Stop()
		b.state.CompareAndSwap(int32(Initializing), int32(Uninitialized))
		return
	case <-wait.C:
	}

	op := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		// A direct Initialize call got there first.
		if b.State() == Ready {
			return nil
		}
		sess, err := b.attempt(ctx)
		if err != nil {
			return err
		}
		if b.onRecover != nil {
			b.onRecover(sess)
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		logrus.WithError(err).Debugf("provider still unreachable, retrying in %s", next)
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(b.retryDelay), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		b.state.CompareAndSwap(int32(Initializing), int32(Uninitialized))
		logrus.WithError(err).Debug("provider retry loop stopped")
	}
}
