// Package author is the author profile screen with live stats and follow.
package author

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// Deps are the services the author screen uses.
type Deps struct {
	Authors  app.AuthorService
	Articles app.ArticleService
	Streams  app.StreamService
	Follows  *engagement.Follows
	Auth     app.AuthState
	Log      *zap.Logger
	Options  []engagement.Option
}

var mounts atomic.Uint64

// --- Messages ---

type loadedMsg struct {
	mount     uint64
	profile   domain.AuthorProfile
	articles  []domain.Article
	following bool
	err       error
}

type statsMsg struct {
	mount uint64
	stats domain.AuthorStats
}

type followMsg struct {
	mount     uint64
	following bool
	resumed   bool
	err       error
}

// --- Model ---

// Model is one mounted author profile. Close must be called when it
// leaves the screen.
type Model struct {
	deps     Deps
	keys     common.KeyMap
	username string
	mount    uint64

	ctx      context.Context
	cancel   context.CancelFunc
	live     *engagement.AuthorStatsSubscriber
	statsBox *common.Mailbox[domain.AuthorStats]
	watching bool

	profile   domain.AuthorProfile
	articles  []domain.Article
	stats     domain.AuthorStats
	following bool
	busy      bool
	cursor    int

	loading bool
	err     error
	spinner spinner.Model
	width   int
	height  int
}

// New mounts the profile of username.
func New(parent context.Context, deps Deps, username string, width, height int) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	statsBox := common.NewMailbox[domain.AuthorStats]()
	opts := append([]engagement.Option{engagement.WithLogger(deps.Log)}, deps.Options...)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		deps:     deps,
		keys:     common.DefaultKeyMap(),
		username: username,
		mount:    mounts.Add(1),
		ctx:      ctx,
		cancel:   cancel,
		live: engagement.NewAuthorStatsSubscriber(deps.Streams, func(_ string, st domain.AuthorStats) {
			statsBox.Put(st)
		}, opts...),
		statsBox: statsBox,
		loading:  true,
		spinner:  s,
		width:    width,
		height:   height,
	}
}

// Username returns the mounted author's username.
func (m Model) Username() string { return m.username }

// Profile returns the loaded profile.
func (m Model) Profile() domain.AuthorProfile { return m.profile }

// Init loads the profile.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Close ends the live stats stream of this mount.
func (m Model) Close() {
	m.cancel()
	m.live.Close()
}

func (m Model) authenticated() bool {
	return m.deps.Auth != nil && m.deps.Auth.Authenticated()
}

func (m Model) load() tea.Cmd {
	ctx, deps, username, mount, authed := m.ctx, m.deps, m.username, m.mount, m.authenticated()
	return func() tea.Msg {
		if !engagement.ValidUsername(username) {
			return loadedMsg{mount: mount, err: domain.ErrInvalidUsername}
		}
		p, err := deps.Authors.Profile(ctx, username)
		if err != nil {
			return loadedMsg{mount: mount, err: err}
		}
		msg := loadedMsg{mount: mount, profile: p, following: p.IsFollowing}
		if deps.Articles != nil {
			if msg.articles, err = deps.Articles.ByAuthor(ctx, username); err != nil {
				deps.Log.Debug("loading author articles", zap.String("author", username), zap.Error(err))
			}
		}
		if authed {
			if following, err := deps.Authors.IsFollowing(ctx, username); err == nil {
				msg.following = following
			} else {
				deps.Log.Debug("checking follow", zap.String("author", username), zap.Error(err))
			}
		}
		return msg
	}
}

func (m Model) waitStats() tea.Cmd {
	mount := m.mount
	return common.WaitCmd(m.ctx, m.statsBox, func(st domain.AuthorStats) tea.Msg {
		return statsMsg{mount: mount, stats: st}
	})
}

func (m Model) toggleFollow() tea.Cmd {
	ctx, follows, username, following, mount := m.ctx, m.deps.Follows, m.profile.Username, m.following, m.mount
	return func() tea.Msg {
		now, err := follows.Toggle(ctx, username, following)
		return followMsg{mount: mount, following: now, err: err}
	}
}

// resumePending replays a follow of this author deferred until login.
func (m Model) resumePending() tea.Cmd {
	if m.deps.Follows == nil || !m.authenticated() {
		return nil
	}
	ctx, follows, username, mount := m.ctx, m.deps.Follows, m.username, m.mount
	return func() tea.Msg {
		done, err := follows.ResumePending(ctx, username)
		if !done && err == nil {
			return nil
		}
		return followMsg{mount: mount, following: done, resumed: true, err: err}
	}
}
