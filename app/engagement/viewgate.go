package engagement

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

const (
	gateArmed int32 = iota
	gateFired
	gateStopped
)

// ViewGate confirms at most one view per mounted article: after the
// reader dwells for DwellDuration or scrolls past ScrollThreshold,
// whichever comes first.
type ViewGate struct {
	analytics app.AnalyticsService
	threshold float64
	log       *zap.Logger

	articleID string
	sessionID string
	mountedAt time.Time
	state     atomic.Int32

	ctx  context.Context
	sent chan struct{}
	once sync.Once

	mu     sync.Mutex
	timer  clock.Timer
	stopFn func() bool
}

// NewViewGate arms a gate for articleID. The gate is stopped when ctx is
// done.
func NewViewGate(ctx context.Context, analytics app.AnalyticsService, articleID string, opts ...Option) *ViewGate {
	o := newOptions(opts)
	g := &ViewGate{
		analytics: analytics,
		threshold: o.threshold,
		log:       o.log.With(zap.String("article", articleID)),
		articleID: articleID,
		sessionID: uuid.NewString(),
		mountedAt: o.clock.Now(),
		ctx:       context.WithoutCancel(ctx),
		sent:      make(chan struct{}),
	}
	g.mu.Lock()
	g.timer = o.clock.AfterFunc(o.dwell, func() { g.trigger("dwell") })
	g.stopFn = context.AfterFunc(ctx, g.Stop)
	g.mu.Unlock()
	return g
}

// SessionID identifies this mount to the server.
func (g *ViewGate) SessionID() string { return g.sessionID }

// Session describes the mount the gate belongs to.
func (g *ViewGate) Session() domain.EngagementSession {
	return domain.EngagementSession{
		ContentID:        g.articleID,
		Kind:             domain.ContentArticle,
		SessionID:        g.sessionID,
		MountedAt:        g.mountedAt,
		HasConfirmedView: g.Confirmed(),
	}
}

// OnScroll reports the current scroll depth in percent.
func (g *ViewGate) OnScroll(percent float64) {
	if g.state.Load() != gateArmed {
		return
	}
	if percent >= g.threshold {
		g.trigger("scroll")
	}
}

// Confirmed reports whether the gate has fired. It never reverts.
func (g *ViewGate) Confirmed() bool {
	return g.state.Load() == gateFired
}

// Sent is closed once the confirmation request has completed.
func (g *ViewGate) Sent() <-chan struct{} { return g.sent }

// Stop disarms the gate. A confirmation already in flight completes.
func (g *ViewGate) Stop() {
	disarmed := g.state.CompareAndSwap(gateArmed, gateStopped)

	g.mu.Lock()
	defer g.mu.Unlock()
	if disarmed && g.timer != nil {
		g.timer.Stop()
	}
	if g.stopFn != nil {
		g.stopFn()
	}
}

func (g *ViewGate) trigger(reason string) {
	if !g.state.CompareAndSwap(gateArmed, gateFired) {
		return
	}
	// The dwell callback may run with the clock locked; leave it
	// immediately.
	go g.confirm(reason)
}

func (g *ViewGate) confirm(reason string) {
	defer g.once.Do(func() { close(g.sent) })

	g.mu.Lock()
	if g.timer != nil {
		g.timer.Stop()
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(g.ctx, requestTimeout)
	defer cancel()
	if err := g.analytics.ConfirmView(ctx, g.articleID, g.sessionID); err != nil {
		g.log.Warn("view confirmation failed", zap.String("trigger", reason), zap.Error(err))
		return
	}
	g.log.Debug("view confirmed", zap.String("trigger", reason), zap.String("session", g.sessionID))
}

// ScrollPercent converts a scroll position to the percentage used by
// OnScroll: the share of the document seen so far.
func ScrollPercent(offset, viewportHeight, documentHeight int) float64 {
	if documentHeight <= 0 {
		return 100
	}
	return float64(offset+viewportHeight) / float64(documentHeight) * 100
}
