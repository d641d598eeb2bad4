package app

import (
	"context"

	"github.com/sussurros/journalterm/domain"
)

// LikeResult is the server's answer to a like toggle.
type LikeResult struct {
	Likes int
	Liked *bool // Nil when the server did not report the state
}

// ArticleService reads articles and their reader contributions.
type ArticleService interface {
	// List returns published articles, optionally filtered.
	List(ctx context.Context, query, category string) ([]domain.Article, error)

	// ByAuthor returns the published articles of an author.
	ByAuthor(ctx context.Context, username string) ([]domain.Article, error)

	// Get returns a single article by slug.
	Get(ctx context.Context, slug string) (domain.Article, error)

	// Recommendations returns articles related to slug.
	Recommendations(ctx context.Context, slug string) ([]domain.Article, error)

	// Comments returns approved comments of an article.
	Comments(ctx context.Context, slug string) ([]domain.Comment, error)

	// AddComment submits a comment for moderation.
	AddComment(ctx context.Context, slug, author, content string) (domain.Comment, error)

	// Footnotes returns approved footnotes of an article.
	Footnotes(ctx context.Context, slug string) ([]domain.Footnote, error)

	// SuggestFootnote submits a footnote suggestion for moderation.
	SuggestFootnote(ctx context.Context, slug string, fn domain.Footnote) error

	// ToggleLike toggles the like of an article on the server.
	ToggleLike(ctx context.Context, slug string) (LikeResult, error)

	// Categories returns category names.
	Categories(ctx context.Context) ([]string, error)

	// Glossary extracts terms and definitions from content.
	Glossary(ctx context.Context, content string) ([]domain.GlossaryTerm, error)
}
