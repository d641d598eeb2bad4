package common

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/domain"
)

// OpenArticleMsg asks the root model to show an article.
type OpenArticleMsg struct {
	Slug string
}

// OpenAuthorMsg asks the root model to show an author profile.
type OpenAuthorMsg struct {
	Username string
}

// BackMsg asks the root model to leave the current screen.
type BackMsg struct{}

// LoginRequiredMsg asks the root model to show the login prompt.
type LoginRequiredMsg struct {
	Reason string
}

// AuthChangedMsg reports a login or logout.
type AuthChangedMsg struct {
	Authenticated bool
}

// ThemeChangedMsg tells screens to re-render styled content.
type ThemeChangedMsg struct{}

// Send wraps msg into a command for immediate delivery.
func Send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// InteractionsMsg carries the latest local like/bookmark record.
type InteractionsMsg struct {
	Record domain.InteractionRecord
}
