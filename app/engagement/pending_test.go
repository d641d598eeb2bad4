package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

type replayFixture struct {
	clock   interface{ Step(time.Duration) }
	store   localstore.Store
	auth    *fakeAuth
	authors *fakeAuthors
	notes   *recordingNotifier
	pending *PendingActions
	follows *Follows
}

func newReplayFixture(t *testing.T) *replayFixture {
	t.Helper()
	fc := newFakeClock()
	store := newTestStore(t)
	fx := &replayFixture{
		clock:   fc,
		store:   store,
		auth:    &fakeAuth{},
		authors: &fakeAuthors{},
		notes:   &recordingNotifier{},
		pending: NewPendingActions(store, WithClock(fc)),
	}
	fx.follows = NewFollows(fx.authors, fx.auth, fx.pending, fx.notes)
	return fx
}

func (fx *replayFixture) deferFollow(t *testing.T, username string) {
	t.Helper()
	if _, err := fx.follows.Toggle(context.Background(), username, false); err == nil {
		t.Fatalf("expected auth required")
	}
}

func (fx *replayFixture) pendingStored() bool {
	_, ok, _ := fx.store.Get(localstore.KeyPendingAction)
	return ok
}

func TestResumePending_ReplaysWithinTTL(t *testing.T) {
	fx := newReplayFixture(t)
	fx.deferFollow(t, "ana")

	fx.clock.Step(PendingTTL - time.Second)
	fx.auth.on.Store(true)

	done, err := fx.follows.ResumePending(context.Background(), "ana")
	if err != nil || !done {
		t.Fatalf("expected replay, done=%v err=%v", done, err)
	}
	if len(fx.authors.followed) != 1 || fx.authors.followed[0] != "ana" {
		t.Fatalf("expected one follow of ana, got %#v", fx.authors.followed)
	}
	n := fx.notes.all()
	if len(n) != 1 || n[0].Kind != domain.NoticePendingCompleted {
		t.Fatalf("expected pending-completed notice, got %#v", n)
	}
	if fx.pendingStored() {
		t.Fatalf("expected pending action removed")
	}

	again, _ := fx.follows.ResumePending(context.Background(), "ana")
	if again || len(fx.authors.followed) != 1 {
		t.Fatalf("replay must happen once")
	}
}

func TestResumePending_DiscardsExpired(t *testing.T) {
	fx := newReplayFixture(t)
	fx.deferFollow(t, "ana")

	fx.clock.Step(PendingTTL)
	fx.auth.on.Store(true)

	done, err := fx.follows.ResumePending(context.Background(), "ana")
	if err != nil || done {
		t.Fatalf("expected no replay, done=%v err=%v", done, err)
	}
	if fx.authors.requests() != 0 || len(fx.notes.all()) != 0 {
		t.Fatalf("expired action must be discarded silently")
	}
	if fx.pendingStored() {
		t.Fatalf("expected expired action removed")
	}
}

func TestResumePending_DiscardsOtherTarget(t *testing.T) {
	fx := newReplayFixture(t)
	fx.deferFollow(t, "ana")
	fx.auth.on.Store(true)

	done, _ := fx.follows.ResumePending(context.Background(), "rui")
	if done || fx.authors.requests() != 0 {
		t.Fatalf("expected no replay for another author")
	}
	if fx.pendingStored() {
		t.Fatalf("expected action consumed")
	}
}

func TestResumePending_CorruptRecordRemoved(t *testing.T) {
	fx := newReplayFixture(t)
	if err := fx.store.Set(localstore.KeyPendingAction, "{broken"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	fx.auth.on.Store(true)

	done, err := fx.follows.ResumePending(context.Background(), "ana")
	if err != nil || done {
		t.Fatalf("expected no replay, done=%v err=%v", done, err)
	}
	if fx.pendingStored() {
		t.Fatalf("expected corrupt record removed")
	}
}

func TestResumePending_WaitsForLogin(t *testing.T) {
	fx := newReplayFixture(t)
	fx.deferFollow(t, "ana")

	done, _ := fx.follows.ResumePending(context.Background(), "ana")
	if done || !fx.pendingStored() {
		t.Fatalf("logged-out resume must keep the action")
	}
}

func TestPendingActions_SaveReplacesPrevious(t *testing.T) {
	fx := newReplayFixture(t)
	if err := fx.pending.Save(domain.PendingFollowAuthor, "ana"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := fx.pending.Save(domain.PendingFollowAuthor, "rui"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !fx.pending.Claim(domain.PendingFollowAuthor, "rui") {
		t.Fatalf("expected latest action to be claimable")
	}
	if fx.pending.Claim(domain.PendingFollowAuthor, "rui") {
		t.Fatalf("expected slot empty after claim")
	}
}
