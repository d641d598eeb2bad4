package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

// authorService implements app.AuthorService using the journal API.
type authorService struct {
	client *Client
}

// NewAuthorService creates an AuthorService backed by the journal API.
func NewAuthorService(client *Client) *authorService {
	return &authorService{client: client}
}

type authorJSON struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Profile   *struct {
		Bio            string `json:"bio"`
		Institution    string `json:"institution"`
		ScientificArea string `json:"scientific_area"`
	} `json:"profile"`
	Stats struct {
		Articles  int `json:"articles"`
		Reads     int `json:"reads"`
		Followers int `json:"followers"`
		Karma     int `json:"karma"`
	} `json:"stats"`
	IsFollowing bool `json:"is_following"`
}

func authorPath(username, action string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", domain.ErrInvalidUsername
	}
	path := "/authors/" + url.PathEscape(username) + "/"
	if action != "" {
		path += action + "/"
	}
	return path, nil
}

func (s *authorService) Profile(ctx context.Context, username string) (domain.AuthorProfile, error) {
	path, err := authorPath(username, "")
	if err != nil {
		return domain.AuthorProfile{}, err
	}
	data, err := s.client.get(ctx, path, authOptional)
	if err != nil {
		return domain.AuthorProfile{}, fmt.Errorf("fetching author: %w", err)
	}
	var a authorJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.AuthorProfile{}, fmt.Errorf("parsing author: %w", err)
	}

	p := domain.AuthorProfile{
		Username:  sanitizeForTerminal(a.Username),
		FirstName: sanitizeForTerminal(a.FirstName),
		LastName:  sanitizeForTerminal(a.LastName),
		Articles:  a.Stats.Articles,
		Stats: domain.AuthorStats{
			Views:     a.Stats.Reads,
			Followers: a.Stats.Followers,
			Karma:     a.Stats.Karma,
		},
		IsFollowing: a.IsFollowing,
	}
	if a.Profile != nil {
		p.Bio = stripHTML(a.Profile.Bio)
		p.Institution = sanitizeForTerminal(a.Profile.Institution)
		p.Area = sanitizeForTerminal(a.Profile.ScientificArea)
	}
	return p, nil
}

func (s *authorService) Follow(ctx context.Context, username string) error {
	path, err := authorPath(username, "follow")
	if err != nil {
		return err
	}
	_, err = s.client.post(ctx, path, nil, authRequired)
	// Already following.
	if IsStatus(err, http.StatusConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("following author: %w", err)
	}
	return nil
}

func (s *authorService) Unfollow(ctx context.Context, username string) error {
	path, err := authorPath(username, "unfollow")
	if err != nil {
		return err
	}
	if _, err := s.client.post(ctx, path, nil, authRequired); err != nil {
		return fmt.Errorf("unfollowing author: %w", err)
	}
	return nil
}

func (s *authorService) IsFollowing(ctx context.Context, username string) (bool, error) {
	path, err := authorPath(username, "check_follow")
	if err != nil {
		return false, err
	}
	data, err := s.client.get(ctx, path, authRequired)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	var out struct {
		Following bool `json:"following"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return false, fmt.Errorf("parsing follow status: %w", err)
	}
	return out.Following, nil
}

func (s *authorService) SendMessage(ctx context.Context, username string, msg app.Message) error {
	path, err := authorPath(username, "send_message")
	if err != nil {
		return err
	}
	if strings.TrimSpace(msg.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	body := map[string]string{
		"name":    strings.TrimSpace(msg.Name),
		"email":   strings.TrimSpace(msg.Email),
		"message": strings.TrimSpace(msg.Message),
	}
	if _, err := s.client.post(ctx, path, body, authOptional); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}
