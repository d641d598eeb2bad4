package engagement

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

// Subscriber keeps one live stream open for the content currently shown
// and folds its events into a snapshot of type S.
type Subscriber[S, E any] struct {
	open     func(ctx context.Context, id string, fn func(E)) error
	fold     func(S, E) S
	onChange func(id string, snapshot S)
	kind     domain.ContentKind
	log      *zap.Logger

	mu     sync.Mutex
	id     string
	gen    uint64
	state  S
	cancel context.CancelFunc
	done   chan struct{}
}

// ArticleStatsSubscriber follows the stats stream of one article.
type ArticleStatsSubscriber = Subscriber[domain.ArticleStats, domain.ArticleStatsPatch]

// AuthorStatsSubscriber follows the update stream of one author.
type AuthorStatsSubscriber = Subscriber[domain.AuthorStats, domain.AuthorUpdate]

// NewArticleStatsSubscriber creates a closed article stats subscriber.
// onChange runs on the stream goroutine after every accepted event.
func NewArticleStatsSubscriber(streams app.StreamService, onChange func(string, domain.ArticleStats), opts ...Option) *ArticleStatsSubscriber {
	o := newOptions(opts)
	return &Subscriber[domain.ArticleStats, domain.ArticleStatsPatch]{
		open:     streams.ArticleStats,
		fold:     domain.ArticleStats.Apply,
		onChange: onChange,
		kind:     domain.ContentArticle,
		log:      o.log,
	}
}

// NewAuthorStatsSubscriber creates a closed author stats subscriber.
func NewAuthorStatsSubscriber(streams app.StreamService, onChange func(string, domain.AuthorStats), opts ...Option) *AuthorStatsSubscriber {
	o := newOptions(opts)
	return &Subscriber[domain.AuthorStats, domain.AuthorUpdate]{
		open:     streams.AuthorUpdates,
		fold:     domain.AuthorStats.Apply,
		onChange: onChange,
		kind:     domain.ContentAuthor,
		log:      o.log,
	}
}

// Kind reports what kind of content the subscriber follows.
func (s *Subscriber[S, E]) Kind() domain.ContentKind { return s.kind }

// Switch closes the current stream, if any, and opens one for id starting
// from initial. Events of the previous stream are never delivered after
// Switch returns.
func (s *Subscriber[S, E]) Switch(ctx context.Context, id string, initial S) {
	s.Close()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.id = id
	s.state = initial
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		err := s.open(ctx, id, func(ev E) { s.apply(gen, ev) })
		if err != nil && ctx.Err() == nil {
			s.log.Warn("stream ended", zap.String("kind", string(s.kind)), zap.String("id", id), zap.Error(err))
		}
	}()
}

// Close closes the current stream and waits for it to finish. It is safe
// to call on a closed subscriber.
func (s *Subscriber[S, E]) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.gen++
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Snapshot returns the id being followed and its current state.
func (s *Subscriber[S, E]) Snapshot() (string, S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.state
}

func (s *Subscriber[S, E]) apply(gen uint64, ev E) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = s.fold(s.state, ev)
	id, state := s.id, s.state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(id, state)
	}
}
