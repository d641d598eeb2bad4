package tui

import (
	"strings"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// View renders the active screen with the status bar underneath.
func (a App) View() string {
	var s string
	switch {
	case a.login != nil:
		s = a.login.View()
	case a.compose != nil:
		s = a.compose.View()
	case a.active == articleView:
		s = a.article.View()
	case a.active == authorView:
		s = a.author.View()
	default:
		s = a.feed.View()
	}

	if line := a.statusLine(); line != "" {
		s += "\n" + line
	}
	if a.showHints {
		s += "\n" + common.StatusBarStyle.Render(a.hints())
	}
	return s
}

func (a App) statusLine() string {
	if a.status.Text == "" {
		return ""
	}
	text := a.status.Text
	switch a.status.Kind {
	case domain.NoticeError:
		return common.ErrorStyle.Render("✗ " + text)
	case domain.NoticeSuccess:
		return common.SuccessStyle.Render("✓ " + text)
	case domain.NoticePendingCompleted:
		return common.SuccessStyle.Render("★ " + text)
	}
	return common.StatusBarStyle.Render(text)
}

func (a App) hints() string {
	k := a.keys
	lines := []string{
		common.Hints(k.Up, k.Down, k.Open, k.Back, k.Refresh, k.Search, k.Category),
		common.Hints(k.Like, k.Bookmark, k.Comment, k.CommentInline, k.Footnote, k.Glossary),
		common.Hints(k.Author, k.Follow, k.Message, k.Bookmarks, k.Login, k.Theme, k.Quit),
	}
	return strings.Join(lines, "\n")
}
