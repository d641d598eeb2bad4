package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sussurros/journalterm/domain"
)

// libraryService implements app.LibraryService using the journal API.
type libraryService struct {
	client *Client
}

// NewLibraryService creates a LibraryService backed by the journal API.
func NewLibraryService(client *Client) *libraryService {
	return &libraryService{client: client}
}

type publicationJSON struct {
	ID       flexID `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Type     string `json:"type"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
	Language string `json:"language"`
	Country  string `json:"country"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Institution *struct {
		Name string `json:"name"`
	} `json:"institution"`
	AccessLevel string   `json:"access_level"`
	Views       int      `json:"views_count"`
	Downloads   int      `json:"downloads_count"`
	Verified    bool     `json:"is_verified"`
	Keywords    []string `json:"keywords"`
	DOI         string   `json:"doi_internal"`
}

func (p publicationJSON) toDomain() domain.Publication {
	out := domain.Publication{
		ID:          string(p.ID),
		Title:       sanitizeForTerminal(p.Title),
		Slug:        p.Slug,
		Type:        sanitizeForTerminal(p.Type),
		Abstract:    stripHTML(p.Abstract),
		Year:        p.Year,
		Language:    sanitizeForTerminal(p.Language),
		Country:     sanitizeForTerminal(p.Country),
		AccessLevel: p.AccessLevel,
		Views:       p.Views,
		Downloads:   p.Downloads,
		Verified:    p.Verified,
		DOI:         sanitizeForTerminal(p.DOI),
	}
	for _, a := range p.Authors {
		if name := sanitizeForTerminal(strings.TrimSpace(a.Name)); name != "" {
			out.Authors = append(out.Authors, name)
		}
	}
	if p.Institution != nil {
		out.Institution = sanitizeForTerminal(p.Institution.Name)
	}
	for _, k := range p.Keywords {
		if k = sanitizeForTerminal(strings.TrimSpace(k)); k != "" {
			out.Keywords = append(out.Keywords, k)
		}
	}
	return out
}

func publicationPath(slug, action string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", errors.New("publication slug is required")
	}
	path := "/library/publications/" + url.PathEscape(slug) + "/"
	if action != "" {
		path += action + "/"
	}
	return path, nil
}

func (s *libraryService) Publications(ctx context.Context, query string) ([]domain.Publication, error) {
	path := "/library/publications/"
	if q := strings.TrimSpace(query); q != "" {
		path += "?" + url.Values{"search": {q}}.Encode()
	}
	data, err := s.client.get(ctx, path, authOptional)
	if err != nil {
		return nil, fmt.Errorf("fetching publications: %w", err)
	}
	items, err := decodeList[publicationJSON](data)
	if err != nil {
		return nil, fmt.Errorf("parsing publications: %w", err)
	}
	out := make([]domain.Publication, 0, len(items))
	for _, p := range items {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (s *libraryService) Publication(ctx context.Context, slug string) (domain.Publication, error) {
	path, err := publicationPath(slug, "")
	if err != nil {
		return domain.Publication{}, err
	}
	data, err := s.client.get(ctx, path, authOptional)
	if err != nil {
		return domain.Publication{}, fmt.Errorf("fetching publication: %w", err)
	}
	var p publicationJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Publication{}, fmt.Errorf("parsing publication: %w", err)
	}
	return p.toDomain(), nil
}

func (s *libraryService) RecordView(ctx context.Context, slug string) error {
	path, err := publicationPath(slug, "view")
	if err != nil {
		return err
	}
	if _, err := s.client.post(ctx, path, struct{}{}, authOptional); err != nil {
		return fmt.Errorf("recording publication view: %w", err)
	}
	return nil
}

func (s *libraryService) RecordDownload(ctx context.Context, slug string) (string, error) {
	path, err := publicationPath(slug, "download")
	if err != nil {
		return "", err
	}
	data, err := s.client.post(ctx, path, struct{}{}, authOptional)
	if err != nil {
		return "", fmt.Errorf("recording publication download: %w", err)
	}
	var out struct {
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("parsing download response: %w", err)
	}
	if out.DownloadURL == "" {
		return "", errors.New("download response missing download_url")
	}
	return s.client.absolute(out.DownloadURL), nil
}
