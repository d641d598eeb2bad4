package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// analyticsService implements app.AnalyticsService using the journal API.
type analyticsService struct {
	client *Client
}

// NewAnalyticsService creates an AnalyticsService backed by the journal API.
func NewAnalyticsService(client *Client) *analyticsService {
	return &analyticsService{client: client}
}

func (s *analyticsService) Presence(ctx context.Context, articleID string) error {
	if strings.TrimSpace(articleID) == "" {
		return fmt.Errorf("presence: empty article id")
	}
	if _, err := s.client.post(ctx, "/analytics/presence/"+url.PathEscape(articleID)+"/", nil, authOptional); err != nil {
		return fmt.Errorf("sending presence: %w", err)
	}
	return nil
}

func (s *analyticsService) ConfirmView(ctx context.Context, articleID, sessionID string) error {
	if strings.TrimSpace(articleID) == "" {
		return fmt.Errorf("confirm view: empty article id")
	}
	body := map[string]string{"session_id": sessionID}
	if _, err := s.client.post(ctx, "/analytics/view/"+url.PathEscape(articleID)+"/", body, authOptional); err != nil {
		return fmt.Errorf("confirming view: %w", err)
	}
	return nil
}
