package engagement

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/sussurros/journalterm/domain"
)

type articleSnapshots struct {
	mu   sync.Mutex
	seen []domain.ArticleStats
	ids  []string
}

func (s *articleSnapshots) record(id string, st domain.ArticleStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	s.seen = append(s.seen, st)
}

func (s *articleSnapshots) last() (string, domain.ArticleStats, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seen) == 0 {
		return "", domain.ArticleStats{}, 0
	}
	return s.ids[len(s.ids)-1], s.seen[len(s.seen)-1], len(s.seen)
}

func TestArticleStatsSubscriber_FoldsShallowly(t *testing.T) {
	streams := newFakeStreams()
	snaps := &articleSnapshots{}
	sub := NewArticleStatsSubscriber(streams, snaps.record)
	defer sub.Close()

	sub.Switch(context.Background(), "42", domain.ArticleStats{})
	waitFor(t, "stream open", func() bool { return streams.articleHandler("42") != nil })
	emit := streams.articleHandler("42")

	emit(domain.ArticleStatsPatch{ViewsDelta: intp(2)})
	emit(domain.ArticleStatsPatch{ReadingNow: intp(4)})
	emit(domain.ArticleStatsPatch{ViewsDelta: intp(5)})

	id, st, n := snaps.last()
	if id != "42" || n != 3 {
		t.Fatalf("expected three snapshots for 42, got %d for %q", n, id)
	}
	if st != (domain.ArticleStats{ViewsDelta: 5, ReadingNow: 4}) {
		t.Fatalf("unexpected snapshot: %#v", st)
	}
	if got := st.Views(100); got != 105 {
		t.Fatalf("expected displayed views 105, got %d", got)
	}
	if _, cur := sub.Snapshot(); cur != st {
		t.Fatalf("snapshot mismatch: %#v vs %#v", cur, st)
	}
}

func TestArticleStatsSubscriber_SwitchClosesOldFirst(t *testing.T) {
	streams := newFakeStreams()
	snaps := &articleSnapshots{}
	sub := NewArticleStatsSubscriber(streams, snaps.record)

	sub.Switch(context.Background(), "1", domain.ArticleStats{})
	waitFor(t, "first stream", func() bool { return streams.articleHandler("1") != nil })
	stale := streams.articleHandler("1")

	sub.Switch(context.Background(), "2", domain.ArticleStats{})
	waitFor(t, "second stream", func() bool { return streams.articleHandler("2") != nil })

	want := []string{"open:1", "close:1", "open:2"}
	if got := streams.log(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected connection order: got %v want %v", got, want)
	}

	stale(domain.ArticleStatsPatch{ViewsDelta: intp(9)})
	if _, _, n := snaps.last(); n != 0 {
		t.Fatalf("stale stream must not deliver, got %d snapshots", n)
	}
	if id, st := sub.Snapshot(); id != "2" || st != (domain.ArticleStats{}) {
		t.Fatalf("unexpected state after switch: %q %#v", id, st)
	}

	sub.Close()
	sub.Close()
	if got := streams.log(); got[len(got)-1] != "close:2" {
		t.Fatalf("expected close on Close, got %v", got)
	}
}

func TestArticleStatsSubscriber_ParentContextCloses(t *testing.T) {
	streams := newFakeStreams()
	sub := NewArticleStatsSubscriber(streams, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sub.Switch(ctx, "1", domain.ArticleStats{})
	waitFor(t, "stream open", func() bool { return streams.articleHandler("1") != nil })
	cancel()
	waitFor(t, "stream close", func() bool { return streams.articleHandler("1") == nil })
	sub.Close()
}

func TestAuthorStatsSubscriber_AppliesUpdateRules(t *testing.T) {
	streams := newFakeStreams()
	var mu sync.Mutex
	var last domain.AuthorStats
	sub := NewAuthorStatsSubscriber(streams, func(_ string, st domain.AuthorStats) {
		mu.Lock()
		last = st
		mu.Unlock()
	})
	defer sub.Close()

	sub.Switch(context.Background(), "ana", domain.AuthorStats{Views: 100, Followers: 3, Karma: 1})
	waitFor(t, "stream open", func() bool { return streams.authorHandler("ana") != nil })
	emit := streams.authorHandler("ana")

	emit(domain.AuthorUpdate{Type: domain.UpdateView, Data: domain.AuthorUpdateData{Delta: intp(1)}})
	emit(domain.AuthorUpdate{Type: domain.UpdateView, Data: domain.AuthorUpdateData{Delta: intp(2)}})
	emit(domain.AuthorUpdate{Type: domain.UpdateFollower, Data: domain.AuthorUpdateData{Total: intp(5)}})
	emit(domain.AuthorUpdate{Type: domain.UpdateKarma, Data: domain.AuthorUpdateData{Total: intp(7)}})
	emit(domain.AuthorUpdate{Type: "share", Data: domain.AuthorUpdateData{Total: intp(99)}})
	emit(domain.AuthorUpdate{Type: domain.UpdateView})

	mu.Lock()
	defer mu.Unlock()
	if last != (domain.AuthorStats{Views: 103, Followers: 5, Karma: 7}) {
		t.Fatalf("unexpected author stats: %#v", last)
	}
}

func TestSubscribers_ReportContentKind(t *testing.T) {
	streams := newFakeStreams()
	article := NewArticleStatsSubscriber(streams, nil)
	author := NewAuthorStatsSubscriber(streams, nil)
	if article.Kind() != domain.ContentArticle || author.Kind() != domain.ContentAuthor {
		t.Fatalf("unexpected kinds %q and %q", article.Kind(), author.Kind())
	}
}
