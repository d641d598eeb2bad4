package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sussurros/journalterm/domain"
)

type authResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Login performs passwordless (magic link) and social logins against the
// journal API and stores the result in a Session.
type Login struct {
	baseURL string
	session *Session
	http    *http.Client
}

// NewLogin creates a Login for the API at baseURL.
func NewLogin(baseURL string, session *Session) *Login {
	return &Login{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestMagicLink asks the server to e-mail a login link to email.
func (l *Login) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	_, err := l.post(ctx, "/auth/magic-link/", map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("requesting magic link: %w", err)
	}
	return nil
}

// VerifyMagicLink exchanges the token from the e-mailed link for a
// session.
func (l *Login) VerifyMagicLink(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, errors.New("token is required")
	}
	data, err := l.post(ctx, "/auth/magic-link/verify/", map[string]string{"token": token})
	if err != nil {
		return domain.User{}, fmt.Errorf("verifying magic link: %w", err)
	}
	return l.store(data)
}

// SocialProviders lists the identity providers the journal accepts.
var SocialProviders = []string{"google", "apple"}

func checkProvider(provider string) error {
	for _, p := range SocialProviders {
		if p == provider {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (want one of %s)", provider, strings.Join(SocialProviders, ", "))
}

// SocialLoginURL returns the provider authorization URL to open in a browser.
func (l *Login) SocialLoginURL(ctx context.Context, provider string) (string, error) {
	if err := checkProvider(provider); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/auth/"+url.PathEscape(provider)+"/login/", nil)
	if err != nil {
		return "", fmt.Errorf("creating social login request: %w", err)
	}
	data, err := l.do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s login url: %w", provider, err)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("parsing social login response: %w", err)
	}
	if out.URL == "" {
		return "", errors.New("social login response missing url")
	}
	return out.URL, nil
}

// ExchangeSocialCode completes a social login with the provider callback code.
func (l *Login) ExchangeSocialCode(ctx context.Context, provider, code, state string) (domain.User, error) {
	if err := checkProvider(provider); err != nil {
		return domain.User{}, err
	}
	if code = strings.TrimSpace(code); code == "" {
		return domain.User{}, errors.New("code is required")
	}
	body := map[string]string{"code": code}
	if state != "" {
		body["state"] = state
	}
	data, err := l.post(ctx, "/auth/"+url.PathEscape(provider)+"/callback/", body)
	if err != nil {
		return domain.User{}, fmt.Errorf("exchanging %s code: %w", provider, err)
	}
	return l.store(data)
}

// ParseCallback extracts the code and state from the address the provider
// redirected the browser to. A bare code is accepted as well.
func ParseCallback(input string) (code, state string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", errors.New("empty callback")
	}
	if !strings.Contains(input, "=") {
		return input, "", nil
	}
	raw := input
	if u, err := url.Parse(input); err == nil && (u.Scheme != "" || strings.HasPrefix(input, "/")) {
		raw = u.RawQuery
	}
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return "", "", fmt.Errorf("parsing callback: %w", err)
	}
	if msg := q.Get("error"); msg != "" {
		return "", "", fmt.Errorf("provider refused sign-in: %s", msg)
	}
	code = q.Get("code")
	if code == "" {
		return "", "", errors.New("callback has no code")
	}
	return code, q.Get("state"), nil
}

func (l *Login) store(data []byte) (domain.User, error) {
	var ar authResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		return domain.User{}, fmt.Errorf("parsing auth response: %w", err)
	}
	if strings.TrimSpace(ar.Access) == "" {
		return domain.User{}, errors.New("auth response missing access token")
	}
	user := domain.User{ID: ar.UserID, Username: ar.Username}
	if err := l.session.Save(Tokens{Access: ar.Access, Refresh: ar.Refresh, User: user}); err != nil {
		return domain.User{}, fmt.Errorf("saving session: %w", err)
	}
	return user, nil
}

func (l *Login) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return l.do(req)
}

func (l *Login) do(req *http.Request) ([]byte, error) {
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
