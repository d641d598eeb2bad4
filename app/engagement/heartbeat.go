package engagement

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/sussurros/journalterm/app"
)

// Heartbeat periodically tells the server that a reader is present on an
// article. Signals are skipped while the view is hidden; failures are
// logged and dropped.
type Heartbeat struct {
	analytics app.AnalyticsService
	visible   app.Visibility
	clock     clock.WithTicker
	interval  time.Duration
	log       *zap.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

// NewHeartbeat creates a stopped heartbeat. A nil visible counts as always
// visible.
func NewHeartbeat(analytics app.AnalyticsService, visible app.Visibility, opts ...Option) *Heartbeat {
	o := newOptions(opts)
	return &Heartbeat{
		analytics: analytics,
		visible:   visible,
		clock:     o.clock,
		interval:  o.heartbeat,
		log:       o.log,
	}
}

// Start sends one signal for articleID now and then one per interval until
// ctx is done or Stop is called. A running heartbeat is stopped first.
func (h *Heartbeat) Start(ctx context.Context, articleID string) {
	h.Stop()

	ctx, cancel := context.WithCancel(ctx)
	ticker := h.clock.NewTicker(h.interval)
	done := make(chan struct{})

	h.mu.Lock()
	h.cancel = cancel
	h.done = done
	h.mu.Unlock()

	h.beat(ctx, articleID)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				h.beat(ctx, articleID)
			}
		}
	}()
}

// Stop ends the heartbeat. No signal is sent after Stop returns.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	h.inflight.Wait()
}

func (h *Heartbeat) beat(ctx context.Context, articleID string) {
	if ctx.Err() != nil {
		return
	}
	if h.visible != nil && !h.visible.Visible() {
		h.log.Debug("presence skipped, view hidden", zap.String("article", articleID))
		return
	}
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		if ctx.Err() != nil {
			return
		}
		rctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		if err := h.analytics.Presence(rctx, articleID); err != nil {
			h.log.Debug("presence failed", zap.String("article", articleID), zap.Error(err))
		}
	}()
}
