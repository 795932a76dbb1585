package control

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultQueueSize absorbs bursts of key events and ticks.
	DefaultQueueSize = 256
	// EnqueueTimeout is how long Enqueue waits on a full queue before
	// dropping the command.
	EnqueueTimeout = 150 * time.Millisecond
)

// ErrDropped is returned when a command could not be queued in time.
var ErrDropped = errors.New("command dropped: queue full")

// Handler executes one command on the loop goroutine.
type Handler func(ctx context.Context, cmd Command) error

// Loop runs commands one at a time on a single goroutine.
type Loop struct {
	ch      chan Command
	handler Handler
	after   func(Command)
}

// NewLoop creates a loop. after, when non-nil, runs after every handled
// command; the application uses it to refresh the UI.
func NewLoop(handler Handler, after func(Command)) *Loop {
	return &Loop{
		ch:      make(chan Command, DefaultQueueSize),
		handler: handler,
		after:   after,
	}
}

// Enqueue posts cmd without blocking the caller for long. If the queue stays
// full for EnqueueTimeout the command is dropped and logged.
func (l *Loop) Enqueue(cmd Command) error {
	select {
	case l.ch <- cmd:
		return nil
	case <-time.After(EnqueueTimeout):
		logrus.WithField("command", cmd.Type.String()).Warn("enqueue timeout: dropping command")
		return ErrDropped
	}
}

// Do enqueues cmd and waits for its result or ctx.
func (l *Loop) Do(ctx context.Context, cmd Command) error {
	cmd.Reply = make(chan error, 1)
	if err := l.Enqueue(cmd); err != nil {
		return err
	}
	select {
	case err := <-cmd.Reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes commands until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.ch:
			err := l.handler(ctx, cmd)
			if err != nil {
				logrus.WithError(err).WithField("command", cmd.Type.String()).Debug("command failed")
			}
			if cmd.Reply != nil {
				select {
				case cmd.Reply <- err:
				default:
				}
			}
			if l.after != nil {
				l.after(cmd)
			}
		}
	}
}
