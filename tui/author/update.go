package author

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
	"github.com/sussurros/journalterm/tui/compose"
)

// Update handles messages for the author screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
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
		m.profile = msg.profile
		m.articles = msg.articles
		m.following = msg.following
		m.stats = msg.profile.Stats
		m.cursor = 0
		m.live.Switch(m.ctx, m.profile.Username, m.profile.Stats)
		if m.watching {
			return m, m.resumePending()
		}
		m.watching = true
		return m, tea.Batch(m.waitStats(), m.resumePending())

	case statsMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.stats = msg.stats
		return m, m.waitStats()

	case followMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		m.busy = false
		if msg.resumed {
			if msg.err == nil {
				m.following = true
			}
			return m, nil
		}
		m.following = msg.following
		if errors.Is(msg.err, domain.ErrAuthRequired) {
			return m, common.Send(common.LoginRequiredMsg{
				Reason: "Log in to follow @" + m.profile.Username + ".",
			})
		}
		return m, nil

	case common.AuthChangedMsg:
		if msg.Authenticated && m.profile.Username != "" {
			return m, m.resumePending()
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, common.Send(common.BackMsg{})

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.load())
	}

	if m.profile.Username == "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Follow):
		if m.busy || m.deps.Follows == nil {
			return m, nil
		}
		m.busy = true
		return m, m.toggleFollow()

	case key.Matches(msg, m.keys.Message):
		return m, common.Send(compose.RequestMsg{
			Target: compose.Target{
				Kind:     compose.KindMessage,
				Username: m.profile.Username,
				Title:    m.profile.DisplayName(),
			},
			Inline: true,
		})

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.articles) {
			return m, common.Send(common.OpenArticleMsg{Slug: m.articles[m.cursor].Slug})
		}
	}
	return m, nil
}
