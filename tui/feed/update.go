package feed

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/tui/common"
)

// Update handles messages for the feed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ArticlesLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil // Superseded by a newer fetch.
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.articles = msg.Articles
		}
		m.cursor = clamp(m.cursor, len(m.articles))
		return m, nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.categoriesErr = msg.err
			return m, nil
		}
		m.categoriesErr = nil
		m.categories = msg.names
		return m.nextCategory()

	case common.InteractionsMsg:
		m.record = msg.Record
		return m, nil

	case common.AuthChangedMsg:
		if m.mode == ModeBookmarks {
			return m.reload()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.mode = ModeLatest
		m.cursor = 0
		return m.reload()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursor = clamp(m.cursor-m.pageSize(), len(m.articles))
	case key.Matches(msg, m.keys.PageDown):
		m.cursor = clamp(m.cursor+m.pageSize(), len(m.articles))
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Category):
		if m.categories == nil {
			return m, m.fetchCategories()
		}
		return m.nextCategory()
	case key.Matches(msg, m.keys.Open):
		if a, ok := m.Selected(); ok {
			return m, common.Send(common.OpenArticleMsg{Slug: a.Slug})
		}
	case key.Matches(msg, m.keys.Author):
		if a, ok := m.Selected(); ok && a.AuthorUsername != "" {
			return m, common.Send(common.OpenAuthorMsg{Username: a.AuthorUsername})
		}
	case key.Matches(msg, m.keys.Back):
		if m.query != "" || m.category != "" {
			m.query = ""
			m.category = ""
			m.cursor = 0
			return m.reload()
		}
	}
	return m, nil
}

func (m Model) pageSize() int {
	if n := m.visibleItems(); n > 1 {
		return n
	}
	return 5
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
