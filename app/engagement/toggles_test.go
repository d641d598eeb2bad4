package engagement

import (
	"context"
	"errors"
	"testing"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

func boolp(b bool) *bool { return &b }

func TestLikes_OptimisticFlipConfirmedByServer(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	articles := &fakeArticles{result: app.LikeResult{Likes: 11, Liked: boolp(true)}}
	likes := NewLikes(articles, local)

	out, err := likes.Toggle(context.Background(), domain.Article{ID: "42", Slug: "entropia", Likes: 10})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if out != (LikeOutcome{Liked: true, Likes: 11}) || !local.IsLiked("42") {
		t.Fatalf("unexpected outcome %#v liked=%v", out, local.IsLiked("42"))
	}
}

func TestLikes_ServerErrorRollsBack(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	likes := NewLikes(&fakeArticles{err: errors.New("boom")}, local)

	out, err := likes.Toggle(context.Background(), domain.Article{ID: "42", Slug: "x", Likes: 10})
	if err == nil {
		t.Fatalf("expected error")
	}
	if out.Liked || out.Likes != 10 || local.IsLiked("42") {
		t.Fatalf("expected rollback, got %#v liked=%v", out, local.IsLiked("42"))
	}
}

func TestLikes_ServerDisagreementWins(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	likes := NewLikes(&fakeArticles{result: app.LikeResult{Likes: 10, Liked: boolp(false)}}, local)

	out, err := likes.Toggle(context.Background(), domain.Article{ID: "42", Slug: "x", Likes: 10})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if out.Liked || local.IsLiked("42") {
		t.Fatalf("expected server state to win, got %#v", out)
	}
}

func TestLikes_MissingServerStateKeepsFlip(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	_ = local.SetLiked("42", true)
	likes := NewLikes(&fakeArticles{result: app.LikeResult{Likes: 9}}, local)

	out, err := likes.Toggle(context.Background(), domain.Article{ID: "42", Slug: "x", Likes: 10})
	if err != nil || out.Liked || local.IsLiked("42") {
		t.Fatalf("expected unlike, got %#v err=%v", out, err)
	}
}

func TestBookmarks_AnonymousTogglesLocally(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	server := &fakeBookmarks{}
	b := NewBookmarks(server, &fakeAuth{}, local)

	on, err := b.Toggle(context.Background(), "5")
	if err != nil || !on || !local.IsBookmarked("5") {
		t.Fatalf("expected local bookmark, on=%v err=%v", on, err)
	}
	if server.calls != 0 {
		t.Fatalf("anonymous bookmark must not call the server")
	}
}

func TestBookmarks_AuthenticatedMirrorsServer(t *testing.T) {
	local := NewInteractions(newTestStore(t), nil)
	_ = local.SetBookmarked("5", true)
	auth := &fakeAuth{}
	auth.on.Store(true)

	server := &fakeBookmarks{on: true}
	b := NewBookmarks(server, auth, local)
	on, err := b.Toggle(context.Background(), "5")
	if err != nil || !on || !local.IsBookmarked("5") {
		t.Fatalf("expected server answer mirrored, on=%v err=%v", on, err)
	}

	server.err = errors.New("down")
	on, err = b.Toggle(context.Background(), "5")
	if err == nil || !on || !local.IsBookmarked("5") {
		t.Fatalf("expected unchanged state on error, on=%v err=%v", on, err)
	}
}

func TestFollows_InvalidUsernameNotifiesWithoutRequest(t *testing.T) {
	authors := &fakeAuthors{}
	notes := &recordingNotifier{}
	auth := &fakeAuth{}
	auth.on.Store(true)
	f := NewFollows(authors, auth, NewPendingActions(newTestStore(t)), notes)

	for _, u := range []string{"", " ", "undefined"} {
		if _, err := f.Toggle(context.Background(), u, false); !errors.Is(err, domain.ErrInvalidUsername) {
			t.Fatalf("expected ErrInvalidUsername for %q, got %v", u, err)
		}
	}
	if authors.requests() != 0 {
		t.Fatalf("expected no requests")
	}
	if n := notes.all(); len(n) != 3 || n[0].Kind != domain.NoticeError {
		t.Fatalf("expected error notices, got %#v", n)
	}
}

func TestFollows_UnauthenticatedStoresPendingAction(t *testing.T) {
	fc := newFakeClock()
	store := newTestStore(t)
	pending := NewPendingActions(store, WithClock(fc))
	authors := &fakeAuthors{}
	f := NewFollows(authors, &fakeAuth{}, pending, nil)

	following, err := f.Toggle(context.Background(), "ana", false)
	if !errors.Is(err, domain.ErrAuthRequired) || following {
		t.Fatalf("expected ErrAuthRequired, got following=%v err=%v", following, err)
	}
	a, ok := pending.Peek()
	if !ok {
		t.Fatalf("expected pending action")
	}
	want := domain.PendingAction{Type: domain.PendingFollowAuthor, Target: "ana", Timestamp: epoch.UnixMilli()}
	if a != want {
		t.Fatalf("unexpected pending action %#v", a)
	}
	if authors.requests() != 0 {
		t.Fatalf("expected no requests while logged out")
	}
}

func TestFollows_AuthenticatedToggle(t *testing.T) {
	authors := &fakeAuthors{}
	notes := &recordingNotifier{}
	auth := &fakeAuth{}
	auth.on.Store(true)
	f := NewFollows(authors, auth, nil, notes)

	following, err := f.Toggle(context.Background(), "ana", false)
	if err != nil || !following {
		t.Fatalf("follow failed: following=%v err=%v", following, err)
	}
	following, err = f.Toggle(context.Background(), "ana", true)
	if err != nil || following {
		t.Fatalf("unfollow failed: following=%v err=%v", following, err)
	}
	if len(authors.followed) != 1 || len(authors.unfollows) != 1 {
		t.Fatalf("unexpected requests: %#v %#v", authors.followed, authors.unfollows)
	}
	for _, n := range notes.all() {
		if n.Kind != domain.NoticeSuccess {
			t.Fatalf("expected success notices, got %#v", n)
		}
	}
}

func TestFollows_FailureNotice(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{name: "server message", err: serverError{msg: "Cannot follow yourself."}, wantText: "Could not follow @ana: Cannot follow yourself."},
		{name: "generic", err: errors.New("dial tcp: refused"), wantText: "Could not follow @ana."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notes := &recordingNotifier{}
			auth := &fakeAuth{}
			auth.on.Store(true)
			f := NewFollows(&fakeAuthors{err: tc.err}, auth, nil, notes)

			following, err := f.Toggle(context.Background(), "ana", false)
			if err == nil || following {
				t.Fatalf("expected failure, following=%v err=%v", following, err)
			}
			n := notes.all()
			if len(n) != 1 || n[0].Kind != domain.NoticeError || n[0].Text != tc.wantText {
				t.Fatalf("unexpected notices %#v", n)
			}
		})
	}
}
