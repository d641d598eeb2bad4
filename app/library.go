package app

import (
	"context"

	"github.com/sussurros/journalterm/domain"
)

// LibraryService reads the digital library.
type LibraryService interface {
	// Publications returns library publications, optionally filtered by a
	// search query.
	Publications(ctx context.Context, query string) ([]domain.Publication, error)

	// Publication returns a single publication by slug.
	Publication(ctx context.Context, slug string) (domain.Publication, error)

	// RecordView counts one view of a publication.
	RecordView(ctx context.Context, slug string) error

	// RecordDownload counts one download and returns the file address.
	RecordDownload(ctx context.Context, slug string) (string, error)
}
