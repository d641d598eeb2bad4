package app

import (
	"context"

	"github.com/sussurros/journalterm/domain"
)

// Message is a contact message sent to an author.
type Message struct {
	Name    string
	Email   string
	Message string
}

// AuthorService reads author profiles and manages follow relationships.
type AuthorService interface {
	// Profile returns the public profile of an author.
	Profile(ctx context.Context, username string) (domain.AuthorProfile, error)

	// Follow follows an author. Requires authentication.
	Follow(ctx context.Context, username string) error

	// Unfollow stops following an author. Requires authentication.
	Unfollow(ctx context.Context, username string) error

	// IsFollowing reports whether the authenticated user follows the author.
	IsFollowing(ctx context.Context, username string) (bool, error)

	// SendMessage delivers a contact message to an author.
	SendMessage(ctx context.Context, username string, msg Message) error
}

// BookmarkService manages server-side bookmarks. Requires authentication.
type BookmarkService interface {
	// List returns the bookmarked articles of the authenticated user.
	List(ctx context.Context) ([]domain.Article, error)

	// Toggle flips the bookmark and returns the server's resulting state.
	Toggle(ctx context.Context, articleID string) (bool, error)
}

// AuthState reports whether a user is currently logged in.
type AuthState interface {
	Authenticated() bool
}
