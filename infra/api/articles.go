package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

// articleService implements app.ArticleService using the journal API.
type articleService struct {
	client *Client
}

// NewArticleService creates an ArticleService backed by the journal API.
func NewArticleService(client *Client) *articleService {
	return &articleService{client: client}
}

// articleJSON is the subset of the article serializer we care about.
type articleJSON struct {
	ID             flexID   `json:"id"`
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Excerpt        string   `json:"excerpt"`
	Content        string   `json:"content"` // HTML
	Author         string   `json:"author"`
	AuthorUsername string   `json:"author_username"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	Date           string   `json:"date"`
	ReadTime       int      `json:"readTime"`
	Likes          int      `json:"likes"`
	Views          int      `json:"views"`
}

func (a articleJSON) toDomain() domain.Article {
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		if t = sanitizeForTerminal(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	return domain.Article{
		ID:             a.ID.String(),
		Slug:           a.Slug,
		Title:          sanitizeForTerminal(a.Title),
		Excerpt:        stripHTML(a.Excerpt),
		Content:        stripHTML(a.Content),
		Author:         sanitizeForTerminal(a.Author),
		AuthorUsername: sanitizeForTerminal(a.AuthorUsername),
		Category:       sanitizeForTerminal(a.Category),
		Tags:           tags,
		Date:           parseDate(a.Date),
		ReadTime:       a.ReadTime,
		Likes:          a.Likes,
		Views:          a.Views,
	}
}

func toArticles(in []articleJSON) []domain.Article {
	out := make([]domain.Article, 0, len(in))
	for _, a := range in {
		out = append(out, a.toDomain())
	}
	return out
}

func (s *articleService) List(ctx context.Context, query, category string) ([]domain.Article, error) {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("search", q)
	}
	if c := strings.TrimSpace(category); c != "" {
		params.Set("category", c)
	}
	path := "/articles/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	data, err := s.client.get(ctx, path, authOptional)
	if err != nil {
		return nil, fmt.Errorf("fetching articles: %w", err)
	}
	items, err := decodeList[articleJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing articles: %w", err)
	}
	return toArticles(items), nil
}

func (s *articleService) ByAuthor(ctx context.Context, username string) ([]domain.Article, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.ErrInvalidUsername
	}
	params := url.Values{}
	params.Set("author__username", strings.TrimSpace(username))

	data, err := s.client.get(ctx, "/articles/?"+params.Encode(), authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching author articles: %w", err)
	}
	items, err := decodeList[articleJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing author articles: %w", err)
	}
	return toArticles(items), nil
}

func (s *articleService) Get(ctx context.Context, slug string) (domain.Article, error) {
	data, err := s.client.get(ctx, "/articles/"+url.PathEscape(slug)+"/", authOptional)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetching article: %w", err)
	}
	var a articleJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Article{}, fmt.Errorf("parsing article: %w", err)
	}
	return a.toDomain(), nil
}

func (s *articleService) Recommendations(ctx context.Context, slug string) ([]domain.Article, error) {
	data, err := s.client.get(ctx, "/articles/"+url.PathEscape(slug)+"/recommendations/", authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}
	items, err := decodeList[articleJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing recommendations: %w", err)
	}
	return toArticles(items), nil
}

type commentJSON struct {
	ID      flexID `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

func (c commentJSON) toDomain() domain.Comment {
	return domain.Comment{
		ID:      c.ID.String(),
		Author:  sanitizeForTerminal(c.Author),
		Content: stripHTML(c.Content),
		Date:    parseDate(c.Date),
		Status:  c.Status,
	}
}

func (s *articleService) Comments(ctx context.Context, slug string) ([]domain.Comment, error) {
	data, err := s.client.get(ctx, "/articles/"+url.PathEscape(slug)+"/comments/", authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}
	items, err := decodeList[commentJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing comments: %w", err)
	}
	out := make([]domain.Comment, 0, len(items))
	for _, c := range items {
		out = append(out, c.toDomain())
	}
	return out, nil
}

func (s *articleService) AddComment(ctx context.Context, slug, author, content string) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, domain.ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "Anonymous"
	}
	body := map[string]string{"author": author, "content": content}
	data, err := s.client.post(ctx, "/articles/"+url.PathEscape(slug)+"/comments/", body, authOptional)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("adding comment: %w", err)
	}
	var c commentJSON
	if err := json.Unmarshal(data, &c); err != nil {
		return domain.Comment{}, fmt.Errorf("parsing comment: %w", err)
	}
	return c.toDomain(), nil
}

type footnoteJSON struct {
	ID            flexID `json:"id,omitempty"`
	Author        string `json:"author"`
	Content       string `json:"content"`
	Type          string `json:"type"`
	ReferenceText string `json:"referenceText,omitempty"`
	Status        string `json:"status,omitempty"`
	Date          string `json:"date,omitempty"`
}

func (s *articleService) Footnotes(ctx context.Context, slug string) ([]domain.Footnote, error) {
	data, err := s.client.get(ctx, "/articles/"+url.PathEscape(slug)+"/footnotes/", authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching footnotes: %w", err)
	}
	items, err := decodeList[footnoteJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing footnotes: %w", err)
	}
	out := make([]domain.Footnote, 0, len(items))
	for _, f := range items {
		out = append(out, domain.Footnote{
			ID:            f.ID.String(),
			Author:        sanitizeForTerminal(f.Author),
			Content:       stripHTML(f.Content),
			Type:          f.Type,
			ReferenceText: sanitizeForTerminal(f.ReferenceText),
			Status:        f.Status,
			Date:          parseDate(f.Date),
		})
	}
	return out, nil
}

func (s *articleService) SuggestFootnote(ctx context.Context, slug string, fn domain.Footnote) error {
	if strings.TrimSpace(fn.Content) == "" {
		return errors.New("footnote content cannot be empty")
	}
	kind := fn.Type
	if kind == "" {
		kind = "note"
	}
	body := footnoteJSON{
		Author:        strings.TrimSpace(fn.Author),
		Content:       strings.TrimSpace(fn.Content),
		Type:          kind,
		ReferenceText: fn.ReferenceText,
	}
	if _, err := s.client.post(ctx, "/articles/"+url.PathEscape(slug)+"/footnotes/", body, authOptional); err != nil {
		return fmt.Errorf("suggesting footnote: %w", err)
	}
	return nil
}

func (s *articleService) ToggleLike(ctx context.Context, slug string) (app.LikeResult, error) {
	data, err := s.client.post(ctx, "/articles/"+url.PathEscape(slug)+"/like/", nil, authOptional)
	if err != nil {
		return app.LikeResult{}, fmt.Errorf("toggling like: %w", err)
	}
	var out struct {
		Likes int   `json:"likes"`
		Liked *bool `json:"liked"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return app.LikeResult{}, fmt.Errorf("parsing like response: %w", err)
	}
	return app.LikeResult{Likes: out.Likes, Liked: out.Liked}, nil
}

func (s *articleService) Categories(ctx context.Context) ([]string, error) {
	return s.names(ctx, "/categories/")
}

// names decodes a list of plain strings or of {"name": ...} objects.
func (s *articleService) names(ctx context.Context, path string) ([]string, error) {
	data, err := s.client.get(ctx, path, authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", strings.Trim(path, "/"), err)
	}
	raw, err := decodeList[json.RawMessage](data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", strings.Trim(path, "/"), err)
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var name string
		if err := json.Unmarshal(r, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(r, &obj); err != nil {
				continue
			}
			name = obj.Name
		}
		if name = sanitizeForTerminal(strings.TrimSpace(name)); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *articleService) Glossary(ctx context.Context, content string) ([]domain.GlossaryTerm, error) {
	data, err := s.client.post(ctx, "/ai/glossary/", map[string]string{"content": content}, authNone)
	if err != nil {
		return nil, fmt.Errorf("fetching glossary: %w", err)
	}
	var items []struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing glossary: %w", err)
	}
	out := make([]domain.GlossaryTerm, 0, len(items))
	for _, it := range items {
		out = append(out, domain.GlossaryTerm{
			Term:       sanitizeForTerminal(it.Term),
			Definition: sanitizeForTerminal(it.Definition),
		})
	}
	return out, nil
}
