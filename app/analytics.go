package app

import (
	"context"

	"github.com/sussurros/journalterm/domain"
)

// AnalyticsService records reader presence and confirmed views.
type AnalyticsService interface {
	// Presence signals that the client is viewing the article.
	Presence(ctx context.Context, articleID string) error

	// ConfirmView records one confirmed view for the mount identified by
	// sessionID.
	ConfirmView(ctx context.Context, articleID, sessionID string) error
}

// StreamService opens server-push streams. Both methods block until ctx is
// done; reconnection is left to the transport.
type StreamService interface {
	// ArticleStats streams partial stats payloads of an article.
	ArticleStats(ctx context.Context, articleID string, fn func(domain.ArticleStatsPatch)) error

	// AuthorUpdates streams update events of an author.
	AuthorUpdates(ctx context.Context, username string, fn func(domain.AuthorUpdate)) error
}

// Visibility reports whether the content is currently visible to the user.
type Visibility interface {
	Visible() bool
}

// Notifier shows transient notices to the user.
type Notifier interface {
	Notify(n domain.Notice)
}
