// Package login is the magic-link login prompt.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// Service sends and verifies magic links.
type Service interface {
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, token string) (domain.User, error)
}

type step int

const (
	stepEmail step = iota
	stepToken
)

// DoneMsg ends the prompt. User is zero when the prompt was cancelled.
type DoneMsg struct {
	User      domain.User
	Cancelled bool
}

type sentMsg struct{ err error }

type verifiedMsg struct {
	user domain.User
	err  error
}

// Model is the two-step login prompt: email, then the token from the link.
type Model struct {
	svc     Service
	reason  string
	step    step
	email   string
	input   textinput.Model
	busy    bool
	err     error
	spinner spinner.Model
}

// New creates a prompt. reason explains why login is needed.
func New(svc Service, reason string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{svc: svc, reason: reason, spinner: s}
	m.input = newInput("you@university.edu")
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 254
	ti.Width = 48
	ti.Focus()
	return ti
}

// Init focuses the input.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sentMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.step = stepToken
		m.input = newInput("token from the email link")
		return m, textinput.Blink

	case verifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, common.Send(DoneMsg{User: msg.user})

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, common.Send(DoneMsg{Cancelled: true})
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	m.busy = true
	m.err = nil
	svc := m.svc

	if m.step == stepEmail {
		m.email = value
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return sentMsg{err: svc.RequestMagicLink(context.Background(), value)}
		})
	}
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := svc.VerifyMagicLink(context.Background(), tokenFromInput(value))
		return verifiedMsg{user: user, err: err}
	})
}

// tokenFromInput accepts either the bare token or the whole link.
func tokenFromInput(s string) string {
	if i := strings.Index(s, "token="); i >= 0 {
		s = s[i+len("token="):]
		if j := strings.IndexAny(s, "&#"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}

// View renders the prompt.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.SectionStyle.Render("Log in") + "\n")
	if m.reason != "" {
		b.WriteString(common.MetaStyle.Render(m.reason) + "\n")
	}
	b.WriteString("\n")

	if m.step == stepEmail {
		b.WriteString("We will email you a sign-in link.\n\n")
	} else {
		b.WriteString("Link sent to " + common.AuthorStyle.Render(m.email) + ". Paste the token or the link.\n\n")
	}
	b.WriteString(m.input.View() + "\n")

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " Please wait...\n")
	}
	if m.err != nil {
		b.WriteString("\n" + common.ErrorStyle.Render(failure(m.err)) + "\n")
	}
	b.WriteString("\n" + common.MetaStyle.Render("enter: continue • esc: cancel"))
	return common.PanelStyle.Render(b.String())
}

func failure(err error) string {
	if msg := engagement.ServerMessage(err); msg != "" {
		return msg
	}
	return "Login failed: " + err.Error()
}
