package engagement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

// LikeOutcome is the settled state after a like toggle.
type LikeOutcome struct {
	Liked bool
	Likes int
}

// Likes toggles article likes on the server and mirrors them locally.
type Likes struct {
	articles app.ArticleService
	local    *Interactions
	log      *zap.Logger
}

// NewLikes creates a like controller.
func NewLikes(articles app.ArticleService, local *Interactions, opts ...Option) *Likes {
	o := newOptions(opts)
	return &Likes{articles: articles, local: local, log: o.log}
}

// Toggle flips the like locally, then on the server. A server error
// restores the previous local state; a server answer that disagrees with
// the local flip wins.
func (l *Likes) Toggle(ctx context.Context, article domain.Article) (LikeOutcome, error) {
	prev := l.local.IsLiked(article.ID)
	if err := l.local.SetLiked(article.ID, !prev); err != nil {
		return LikeOutcome{Liked: prev, Likes: article.Likes}, err
	}

	res, err := l.articles.ToggleLike(ctx, article.Slug)
	if err != nil {
		if rbErr := l.local.SetLiked(article.ID, prev); rbErr != nil {
			l.log.Warn("like rollback failed", zap.String("article", article.ID), zap.Error(rbErr))
		}
		return LikeOutcome{Liked: prev, Likes: article.Likes}, fmt.Errorf("like: %w", err)
	}

	liked := !prev
	if res.Liked != nil && *res.Liked != liked {
		liked = *res.Liked
		if err := l.local.SetLiked(article.ID, liked); err != nil {
			l.log.Warn("like sync failed", zap.String("article", article.ID), zap.Error(err))
		}
	}
	return LikeOutcome{Liked: liked, Likes: res.Likes}, nil
}
