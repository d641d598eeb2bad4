package article

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"k8s.io/utils/clock"
	testclock "k8s.io/utils/clock/testing"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

type stubArticles struct {
	app.ArticleService
	article domain.Article
	likes   int
}

func (s *stubArticles) Get(context.Context, string) (domain.Article, error) { return s.article, nil }
func (s *stubArticles) Comments(context.Context, string) ([]domain.Comment, error) {
	return []domain.Comment{{ID: "c1", Author: "Rui", Content: "Great read"}}, nil
}
func (s *stubArticles) Footnotes(context.Context, string) ([]domain.Footnote, error) {
	return nil, nil
}
func (s *stubArticles) Recommendations(context.Context, string) ([]domain.Article, error) {
	return nil, nil
}
func (s *stubArticles) ToggleLike(context.Context, string) (app.LikeResult, error) {
	s.likes++
	return app.LikeResult{Likes: s.likes}, nil
}
func (s *stubArticles) Glossary(context.Context, string) ([]domain.GlossaryTerm, error) {
	return []domain.GlossaryTerm{{Term: "Qubit", Definition: "Unit of quantum information."}}, nil
}

type recordingAnalytics struct {
	mu       sync.Mutex
	presence int
	views    []string
}

func (a *recordingAnalytics) Presence(context.Context, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presence++
	return nil
}

func (a *recordingAnalytics) ConfirmView(_ context.Context, _, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.views = append(a.views, sessionID)
	return nil
}

func (a *recordingAnalytics) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presence, len(a.views)
}

// blockingStreams holds every stream open until its context ends.
type blockingStreams struct {
	mu     sync.Mutex
	open   int
	closed chan string
}

func newBlockingStreams() *blockingStreams {
	return &blockingStreams{closed: make(chan string, 8)}
}

func (s *blockingStreams) ArticleStats(ctx context.Context, id string, _ func(domain.ArticleStatsPatch)) error {
	s.mu.Lock()
	s.open++
	s.mu.Unlock()
	<-ctx.Done()
	s.closed <- id
	return nil
}

func (s *blockingStreams) AuthorUpdates(ctx context.Context, _ string, _ func(domain.AuthorUpdate)) error {
	<-ctx.Done()
	return nil
}

func newTestDeps(t *testing.T, a domain.Article) (Deps, *recordingAnalytics, *blockingStreams, *stubArticles) {
	t.Helper()
	store, err := localstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"), nil)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var clk clock.WithTickerAndDelayedExecution = testclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	articles := &stubArticles{article: a}
	analytics := &recordingAnalytics{}
	streams := newBlockingStreams()
	local := engagement.NewInteractions(store, nil)

	return Deps{
		Articles:  articles,
		Analytics: analytics,
		Streams:   streams,
		Likes:     engagement.NewLikes(articles, local),
		Local:     local,
		Options:   []engagement.Option{engagement.WithClock(clk)},
	}, analytics, streams, articles
}

func longArticle() domain.Article {
	return domain.Article{
		ID:      "42",
		Slug:    "on-qubits",
		Title:   "On Qubits",
		Author:  "Ana Lima",
		Content: strings.Repeat("A paragraph about superposition.\n\n", 60),
		Views:   100,
		Likes:   3,
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
