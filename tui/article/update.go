package article

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
	"github.com/sussurros/journalterm/tui/compose"
)

const headerLines = 3

// Update handles messages for the article screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.glossaryLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.article = msg.article
		m.comments = msg.comments
		m.footnotes = msg.footnotes
		m.related = msg.related
		if m.deps.Local != nil {
			rec := m.deps.Local.Load()
			m.liked = rec.IsLiked(m.article.ID)
			m.bookmarked = rec.IsBookmarked(m.article.ID)
		}
		m.refreshContent()
		return m.startEngagement()

	case statsMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.stats = msg.stats
		return m, m.waitStats()

	case common.InteractionsMsg:
		if m.article.ID != "" {
			m.liked = msg.Record.IsLiked(m.article.ID)
			m.bookmarked = msg.Record.IsBookmarked(m.article.ID)
		}
		return m, nil

	case likedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.busy = false
		m.liked = msg.outcome.Liked
		if msg.err != nil {
			m.notify(domain.NoticeError, failure("Could not update the like", msg.err))
			return m, nil
		}
		m.article.Likes = msg.outcome.Likes
		return m, nil

	case bookmarkedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.notify(domain.NoticeError, failure("Could not update the bookmark", msg.err))
			return m, nil
		}
		m.bookmarked = msg.bookmarked
		if msg.bookmarked {
			m.notify(domain.NoticeSuccess, "Saved to bookmarks.")
		} else {
			m.notify(domain.NoticeInfo, "Removed from bookmarks.")
		}
		return m, nil

	case glossaryMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.glossaryLoading = false
		m.glossaryErr = msg.err
		m.glossary = msg.terms
		return m, nil

	case common.ThemeChangedMsg:
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.scroll(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.glossaryOpen {
			m.glossaryOpen = false
			return m, nil
		}
		return m, common.Send(common.BackMsg{})

	case key.Matches(msg, m.keys.Refresh):
		if m.err != nil || !m.loading {
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil
	}

	if m.article.ID == "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Like):
		if m.busy || m.deps.Likes == nil {
			return m, nil
		}
		m.busy = true
		m.liked = !m.liked
		return m, m.toggleLike()

	case key.Matches(msg, m.keys.Bookmark):
		if m.busy || m.deps.Bookmarks == nil {
			return m, nil
		}
		m.busy = true
		return m, m.toggleBookmark()

	case key.Matches(msg, m.keys.Comment):
		return m, m.compose(compose.KindComment, false)
	case key.Matches(msg, m.keys.CommentInline):
		return m, m.compose(compose.KindComment, true)
	case key.Matches(msg, m.keys.Footnote):
		return m, m.compose(compose.KindFootnote, false)

	case key.Matches(msg, m.keys.Glossary):
		m.glossaryOpen = !m.glossaryOpen
		if m.glossaryOpen && m.glossary == nil && !m.glossaryLoading {
			m.glossaryLoading = true
			m.glossaryErr = nil
			return m, tea.Batch(m.spinner.Tick, m.loadGlossary())
		}
		return m, nil

	case key.Matches(msg, m.keys.Author):
		if engagement.ValidUsername(m.article.AuthorUsername) {
			return m, common.Send(common.OpenAuthorMsg{Username: m.article.AuthorUsername})
		}
		m.notify(domain.NoticeError, "Invalid author.")
		return m, nil
	}

	return m.scroll(msg)
}

func (m Model) compose(kind compose.Kind, inline bool) tea.Cmd {
	return common.Send(compose.RequestMsg{
		Target: compose.Target{Kind: kind, Slug: m.article.Slug, Title: m.article.Title},
		Inline: inline,
	})
}

// scroll forwards msg to the viewport and reports a changed depth to the
// view gate.
func (m Model) scroll(msg tea.Msg) (Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if off := m.viewport.YOffset; off != m.lastOffset {
		m.lastOffset = off
		if m.gate != nil {
			m.gate.OnScroll(engagement.ScrollPercent(off, m.viewport.Height, m.viewport.TotalLineCount()))
		}
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	vpHeight := max(height-headerLines-2, 3)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.refreshContent()
}

func failure(prefix string, err error) string {
	if errors.Is(err, domain.ErrUnauthorized) {
		return "Your session expired. Log in again."
	}
	if msg := engagement.ServerMessage(err); msg != "" {
		return prefix + ": " + msg
	}
	return prefix + "."
}
