package engagement

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

// PendingActions holds at most one action attempted while logged out.
type PendingActions struct {
	store localstore.Store
	clock clock.PassiveClock
	ttl   time.Duration
	log   *zap.Logger
}

// NewPendingActions creates the pending action slot over store.
func NewPendingActions(store localstore.Store, opts ...Option) *PendingActions {
	o := newOptions(opts)
	return &PendingActions{store: store, clock: o.clock, ttl: o.ttl, log: o.log}
}

// Save replaces the pending action with one stamped now.
func (p *PendingActions) Save(t domain.PendingActionType, target string) error {
	a := domain.NewPendingAction(t, target, p.clock.Now())
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding pending action: %w", err)
	}
	if err := p.store.Set(localstore.KeyPendingAction, string(data)); err != nil {
		return fmt.Errorf("saving pending action: %w", err)
	}
	return nil
}

// Peek returns the stored action without removing it.
func (p *PendingActions) Peek() (domain.PendingAction, bool) {
	raw, ok, err := p.store.Get(localstore.KeyPendingAction)
	if err != nil || !ok {
		return domain.PendingAction{}, false
	}
	var a domain.PendingAction
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return domain.PendingAction{}, false
	}
	return a, true
}

// Take removes and returns the stored action. A corrupt record is removed
// and reported as absent.
func (p *PendingActions) Take() (domain.PendingAction, bool) {
	raw, ok, err := p.store.Get(localstore.KeyPendingAction)
	if err != nil {
		p.log.Warn("reading pending action", zap.Error(err))
		return domain.PendingAction{}, false
	}
	if !ok {
		return domain.PendingAction{}, false
	}
	if err := p.store.Remove(localstore.KeyPendingAction); err != nil {
		p.log.Warn("removing pending action", zap.Error(err))
	}

	var a domain.PendingAction
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		p.log.Warn("discarding corrupt pending action", zap.Error(err))
		return domain.PendingAction{}, false
	}
	return a, true
}

// Claim takes the stored action and reports whether it is a replayable
// action of type t for target. Any stored action is consumed.
func (p *PendingActions) Claim(t domain.PendingActionType, target string) bool {
	a, ok := p.Take()
	if !ok {
		return false
	}
	if !a.Matches(t, target, p.clock.Now(), p.ttl) {
		p.log.Debug("discarding pending action",
			zap.String("type", string(a.Type)),
			zap.String("target", a.Target),
			zap.Bool("expired", a.Expired(p.clock.Now(), p.ttl)))
		return false
	}
	return true
}
