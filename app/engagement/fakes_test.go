package engagement

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newFakeClock() *testingclock.FakeClock { return testingclock.NewFakeClock(epoch) }

func newTestStore(t *testing.T) localstore.Store {
	t.Helper()
	store, err := localstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"), nil)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type viewCall struct {
	articleID string
	sessionID string
}

type fakeAnalytics struct {
	mu       sync.Mutex
	presence []string
	views    []viewCall
	err      error
}

func (f *fakeAnalytics) Presence(_ context.Context, articleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence = append(f.presence, articleID)
	return f.err
}

func (f *fakeAnalytics) ConfirmView(_ context.Context, articleID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, viewCall{articleID: articleID, sessionID: sessionID})
	return f.err
}

func (f *fakeAnalytics) presenceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.presence)
}

func (f *fakeAnalytics) viewCalls() []viewCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]viewCall(nil), f.views...)
}

type fakeVisibility struct {
	visible atomic.Bool
	calls   atomic.Int32
}

func newVisibility(v bool) *fakeVisibility {
	f := &fakeVisibility{}
	f.visible.Store(v)
	return f
}

func (f *fakeVisibility) Visible() bool {
	f.calls.Add(1)
	return f.visible.Load()
}

type fakeAuth struct{ on atomic.Bool }

func (f *fakeAuth) Authenticated() bool { return f.on.Load() }

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *recordingNotifier) Notify(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notice(nil), r.notices...)
}

type serverError struct{ msg string }

func (e serverError) Error() string         { return "server: " + e.msg }
func (e serverError) ServerMessage() string { return e.msg }

type fakeAuthors struct {
	mu        sync.Mutex
	followed  []string
	unfollows []string
	err       error
}

func (f *fakeAuthors) Profile(context.Context, string) (domain.AuthorProfile, error) {
	return domain.AuthorProfile{}, errors.New("not used")
}

func (f *fakeAuthors) Follow(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followed = append(f.followed, username)
	return f.err
}

func (f *fakeAuthors) Unfollow(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unfollows = append(f.unfollows, username)
	return f.err
}

func (f *fakeAuthors) IsFollowing(context.Context, string) (bool, error) { return false, nil }

func (f *fakeAuthors) SendMessage(context.Context, string, app.Message) error { return nil }

func (f *fakeAuthors) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.followed) + len(f.unfollows)
}

type fakeArticles struct {
	app.ArticleService
	result app.LikeResult
	err    error
	calls  int
}

func (f *fakeArticles) ToggleLike(context.Context, string) (app.LikeResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeBookmarks struct {
	on    bool
	err   error
	calls int
}

func (f *fakeBookmarks) List(context.Context) ([]domain.Article, error) { return nil, nil }

func (f *fakeBookmarks) Toggle(context.Context, string) (bool, error) {
	f.calls++
	return f.on, f.err
}

type fakeStreams struct {
	mu      sync.Mutex
	article map[string]func(domain.ArticleStatsPatch)
	author  map[string]func(domain.AuthorUpdate)
	events  []string
}

func newFakeStreams() *fakeStreams {
	return &fakeStreams{
		article: make(map[string]func(domain.ArticleStatsPatch)),
		author:  make(map[string]func(domain.AuthorUpdate)),
	}
}

func (f *fakeStreams) record(ev string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeStreams) ArticleStats(ctx context.Context, id string, fn func(domain.ArticleStatsPatch)) error {
	f.mu.Lock()
	f.article[id] = fn
	f.mu.Unlock()
	f.record("open:" + id)
	<-ctx.Done()
	f.mu.Lock()
	delete(f.article, id)
	f.mu.Unlock()
	f.record("close:" + id)
	return nil
}

func (f *fakeStreams) AuthorUpdates(ctx context.Context, username string, fn func(domain.AuthorUpdate)) error {
	f.mu.Lock()
	f.author[username] = fn
	f.mu.Unlock()
	f.record("open:" + username)
	<-ctx.Done()
	f.mu.Lock()
	delete(f.author, username)
	f.mu.Unlock()
	f.record("close:" + username)
	return nil
}

func (f *fakeStreams) articleHandler(id string) func(domain.ArticleStatsPatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.article[id]
}

func (f *fakeStreams) authorHandler(id string) func(domain.AuthorUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.author[id]
}

func (f *fakeStreams) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func intp(n int) *int { return &n }
