package engagement

import (
	"context"
	"fmt"

	"github.com/sussurros/journalterm/app"
)

// Bookmarks toggles bookmarks on the server when logged in and locally
// otherwise.
type Bookmarks struct {
	server app.BookmarkService
	auth   app.AuthState
	local  *Interactions
}

// NewBookmarks creates a bookmark controller. A nil auth means anonymous.
func NewBookmarks(server app.BookmarkService, auth app.AuthState, local *Interactions) *Bookmarks {
	return &Bookmarks{server: server, auth: auth, local: local}
}

// Toggle flips the bookmark of articleID and returns the new state. When
// logged in the server's answer is authoritative and mirrored locally.
func (b *Bookmarks) Toggle(ctx context.Context, articleID string) (bool, error) {
	if b.auth == nil || !b.auth.Authenticated() || b.server == nil {
		return b.local.ToggleBookmarked(articleID)
	}

	on, err := b.server.Toggle(ctx, articleID)
	if err != nil {
		return b.local.IsBookmarked(articleID), fmt.Errorf("bookmark: %w", err)
	}
	if err := b.local.SetBookmarked(articleID, on); err != nil {
		return on, err
	}
	return on, nil
}
