package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sussurros/journalterm/domain"
)

// bookmarkService implements app.BookmarkService using the journal API.
type bookmarkService struct {
	client *Client
}

// NewBookmarkService creates a BookmarkService backed by the journal API.
func NewBookmarkService(client *Client) *bookmarkService {
	return &bookmarkService{client: client}
}

// bookmarkJSON nests the article a bookmark points to.
type bookmarkJSON struct {
	Article *articleJSON `json:"article"`
}

func (s *bookmarkService) List(ctx context.Context) ([]domain.Article, error) {
	data, err := s.client.get(ctx, "/bookmarks/", authRequired)
	if err != nil {
		return nil, fmt.Errorf("fetching bookmarks: %w", err)
	}
	items, err := decodeList[bookmarkJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing bookmarks: %w", err)
	}
	out := make([]domain.Article, 0, len(items))
	for _, b := range items {
		if b.Article != nil {
			out = append(out, b.Article.toDomain())
		}
	}
	return out, nil
}

func (s *bookmarkService) Toggle(ctx context.Context, articleID string) (bool, error) {
	var id any = articleID
	// The server keys articles by integer primary key.
	if n, err := strconv.ParseInt(articleID, 10, 64); err == nil {
		id = n
	}
	data, err := s.client.post(ctx, "/bookmarks/toggle/", map[string]any{"article_id": id}, authRequired)
	if err != nil {
		return false, fmt.Errorf("toggling bookmark: %w", err)
	}
	var out struct {
		Bookmarked bool `json:"bookmarked"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return false, fmt.Errorf("parsing bookmark response: %w", err)
	}
	return out.Bookmarked, nil
}
