package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sussurros/journalterm/domain"
)

func eventServer(t *testing.T, wantPath string, frames string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, frames)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestArticleStats_DecodesStatsAndSkipsMalformed(t *testing.T) {
	frames := ": keep-alive\n\n" +
		"data: {\"views_delta\":2}\n\n" +
		"event: stats\ndata: {\"reading_now\":5}\n\n" +
		"event: stats\ndata: not-json\n\n" +
		"event: other\ndata: {\"views_delta\":9}\n\n" +
		"data: {\"views_delta\":3,\"reading_now\":1}\n\n"
	srv := eventServer(t, "/api/analytics/stream/42/", frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.ArticleStatsPatch, 8)
	done := make(chan error, 1)
	s := NewStreams(srv.URL+"/api/", nil, WithReconnectInterval(10*time.Millisecond, 50*time.Millisecond))
	go func() {
		done <- s.ArticleStats(ctx, "42", func(p domain.ArticleStatsPatch) { got <- p })
	}()

	var stats domain.ArticleStats
	for i := 0; i < 3; i++ {
		select {
		case p := <-got:
			stats = stats.Apply(p)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for patch %d", i)
		}
	}
	if stats != (domain.ArticleStats{ViewsDelta: 3, ReadingNow: 1}) {
		t.Fatalf("unexpected folded stats: %#v", stats)
	}
	select {
	case p := <-got:
		t.Fatalf("unexpected extra patch: %#v", p)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("stream did not stop after cancel")
	}
}

func TestAuthorUpdates_OnlyUpdateEvents(t *testing.T) {
	frames := "data: {\"type\":\"view\",\"data\":{\"delta\":100}}\n\n" +
		"event: update\ndata: {\"type\":\"view\",\"data\":{\"delta\":1},\"timestamp\":\"2024-01-01T00:00:00Z\"}\n\n" +
		"event: update\ndata: {\"type\":\"follower\",\"data\":{\"total\":12}}\n\n"
	srv := eventServer(t, "/analytics/stream/author/ana%20maria/", frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.AuthorUpdate, 8)
	s := NewStreams(srv.URL, nil)
	go func() { _ = s.AuthorUpdates(ctx, "ana maria", func(u domain.AuthorUpdate) { got <- u }) }()

	var stats domain.AuthorStats
	for i := 0; i < 2; i++ {
		select {
		case u := <-got:
			stats = stats.Apply(u)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for update %d", i)
		}
	}
	if stats != (domain.AuthorStats{Views: 1, Followers: 12}) {
		t.Fatalf("unexpected folded stats: %#v", stats)
	}
}

func TestArticleStats_ReconnectsAfterServerClose(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprintf(w, "data: {\"reading_now\":%d}\n\n", n)
		w.(http.Flusher).Flush()
		if n == 1 {
			return
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 8)
	s := NewStreams(srv.URL, nil, WithReconnectInterval(10*time.Millisecond, 20*time.Millisecond))
	go func() {
		_ = s.ArticleStats(ctx, "1", func(p domain.ArticleStatsPatch) {
			if p.ReadingNow != nil {
				got <- *p.ReadingNow
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case n := <-got:
			if n == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("expected a second connection, saw %d", conns.Load())
		}
	}
}
