package feed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

type stubArticles struct {
	app.ArticleService
	articles []domain.Article
	queries  []string

	categories       []string
	categoriesListed []string
	categoryCalls    int
}

func (s *stubArticles) List(_ context.Context, query, category string) ([]domain.Article, error) {
	s.queries = append(s.queries, query)
	s.categoriesListed = append(s.categoriesListed, category)
	return s.articles, nil
}

func (s *stubArticles) Categories(context.Context) ([]string, error) {
	s.categoryCalls++
	return s.categories, nil
}

type stubBookmarks struct {
	articles []domain.Article
}

func (s stubBookmarks) List(context.Context) ([]domain.Article, error) { return s.articles, nil }
func (s stubBookmarks) Toggle(context.Context, string) (bool, error)  { return false, nil }

type stubAuth bool

func (a stubAuth) Authenticated() bool { return bool(a) }

func newInteractions(t *testing.T) *engagement.Interactions {
	t.Helper()
	store, err := localstore.NewFileStore(filepath.Join(t.TempDir(), "store.json"), nil)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return engagement.NewInteractions(store, nil)
}

func makeArticle(id string) domain.Article {
	return domain.Article{
		ID:             id,
		Slug:           "slug-" + id,
		Title:          "Title " + id,
		Author:         "Author " + id,
		AuthorUsername: "user" + id,
	}
}

func makeArticles(ids ...string) []domain.Article {
	out := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		out = append(out, makeArticle(id))
	}
	return out
}
