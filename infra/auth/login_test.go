package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sussurros/journalterm/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func withMockDefaultTransport(t *testing.T, rt roundTripFunc) {
	t.Helper()
	prev := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() { http.DefaultTransport = prev })
}

func response(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestVerifyMagicLink_StoresSession(t *testing.T) {
	var gotBody map[string]string
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/magic-link/verify/" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		return response(r, http.StatusOK, `{"access":"acc","refresh":"ref","user_id":3,"username":"rui"}`), nil
	}))

	s, _ := newTestSession(t)
	l := NewLogin("http://example.test/api/", s)

	user, err := l.VerifyMagicLink(context.Background(), " magic ")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if gotBody["token"] != "magic" {
		t.Fatalf("expected trimmed token in body: %#v", gotBody)
	}
	if user.Username != "rui" || user.ID != 3 {
		t.Fatalf("unexpected user: %#v", user)
	}
	if tok, _ := s.AccessToken(); tok != "acc" {
		t.Fatalf("expected session token stored, got %q", tok)
	}
}

func TestVerifyMagicLink_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: "{}", wantErr: domain.ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "missing access", status: http.StatusOK, body: `{"username":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return response(r, tc.status, tc.body), nil
			}))
			s, _ := newTestSession(t)
			_, err := NewLogin("http://example.test/api", s).VerifyMagicLink(context.Background(), "tok")
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if s.Authenticated() {
				t.Fatalf("failed login must not store a session")
			}
		})
	}
}

func TestRequestMagicLink_RequiresEmail(t *testing.T) {
	s, _ := newTestSession(t)
	if err := NewLogin("http://example.test/api", s).RequestMagicLink(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty email")
	}
}

func TestSocialLoginURL(t *testing.T) {
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/auth/google/login/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		return response(r, http.StatusOK, `{"url":"https://accounts.example/auth"}`), nil
	}))
	s, _ := newTestSession(t)
	got, err := NewLogin("http://example.test/api", s).SocialLoginURL(context.Background(), "google")
	if err != nil || got != "https://accounts.example/auth" {
		t.Fatalf("unexpected url %q err=%v", got, err)
	}
}

func TestSocialLogin_RejectsUnknownProvider(t *testing.T) {
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected, got %s", r.URL.Path)
		return nil, nil
	}))
	s, _ := newTestSession(t)
	l := NewLogin("http://example.test/api", s)
	if _, err := l.SocialLoginURL(context.Background(), "github"); err == nil {
		t.Fatal("expected unknown provider error")
	}
	if _, err := l.ExchangeSocialCode(context.Background(), "github", "c", ""); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestExchangeSocialCode_StoresSession(t *testing.T) {
	var gotBody map[string]string
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/apple/callback/" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		return response(r, http.StatusOK, `{"access":"acc","refresh":"ref","user_id":8,"username":"iris"}`), nil
	}))

	s, _ := newTestSession(t)
	user, err := NewLogin("http://example.test/api", s).ExchangeSocialCode(context.Background(), "apple", "c1", "st")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if gotBody["code"] != "c1" || gotBody["state"] != "st" {
		t.Fatalf("unexpected body %#v", gotBody)
	}
	if user.Username != "iris" || !s.Authenticated() {
		t.Fatalf("expected session for iris, got %#v", user)
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		code      string
		state     string
		expectErr bool
	}{
		{name: "redirect address", in: "http://localhost:5173/auth/callback?code=c1&state=s1", code: "c1", state: "s1"},
		{name: "path only", in: "/auth/callback/apple?code=c2", code: "c2"},
		{name: "query only", in: "code=c3&state=s3", code: "c3", state: "s3"},
		{name: "bare code", in: "  4/0AbC  ", code: "4/0AbC"},
		{name: "provider error", in: "http://localhost/cb?error=access_denied", expectErr: true},
		{name: "no code", in: "http://localhost/cb?state=s", expectErr: true},
		{name: "empty", in: " ", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, state, err := ParseCallback(tt.in)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got code=%q", code)
				}
				return
			}
			if err != nil || code != tt.code || state != tt.state {
				t.Fatalf("got code=%q state=%q err=%v", code, state, err)
			}
		})
	}
}
