// Package engagement implements the realtime engagement layer of an open
// article or author view: presence heartbeats, view confirmation, live
// stats, like/bookmark/follow toggles and replay of actions deferred until
// login.
package engagement

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

const (
	// HeartbeatInterval is the period between presence signals.
	HeartbeatInterval = 15 * time.Second

	// DwellDuration is how long a view must stay mounted to count.
	DwellDuration = 15 * time.Second

	// ScrollThreshold is the scroll percentage that counts as a view.
	ScrollThreshold = 30.0

	// PendingTTL bounds how long a deferred action stays replayable.
	PendingTTL = time.Hour

	requestTimeout = 10 * time.Second
)

type options struct {
	clock     clock.WithTickerAndDelayedExecution
	log       *zap.Logger
	heartbeat time.Duration
	dwell     time.Duration
	threshold float64
	ttl       time.Duration
}

// Option customises engagement components.
type Option func(*options)

// WithClock replaces the wall clock, typically with a fake in tests.
func WithClock(c clock.WithTickerAndDelayedExecution) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithHeartbeatInterval overrides HeartbeatInterval.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(o *options) { o.heartbeat = d }
}

// WithDwell overrides DwellDuration.
func WithDwell(d time.Duration) Option {
	return func(o *options) { o.dwell = d }
}

// WithScrollThreshold overrides ScrollThreshold.
func WithScrollThreshold(pct float64) Option {
	return func(o *options) { o.threshold = pct }
}

// WithPendingTTL overrides PendingTTL.
func WithPendingTTL(d time.Duration) Option {
	return func(o *options) { o.ttl = d }
}

func newOptions(opts []Option) options {
	o := options{
		clock:     clock.RealClock{},
		log:       zap.NewNop(),
		heartbeat: HeartbeatInterval,
		dwell:     DwellDuration,
		threshold: ScrollThreshold,
		ttl:       PendingTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notice) {}

func notifierOrNop(n app.Notifier) app.Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// ServerMessage returns the message the server attached to err, if any.
func ServerMessage(err error) string {
	var withMsg interface{ ServerMessage() string }
	if errors.As(err, &withMsg) {
		return withMsg.ServerMessage()
	}
	return ""
}
