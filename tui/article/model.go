// Package article is the reading screen. While it is open it reports
// presence, confirms the view and follows the article's live stats.
package article

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// Deps are the services the article screen uses.
type Deps struct {
	Articles   app.ArticleService
	Analytics  app.AnalyticsService
	Streams    app.StreamService
	Visibility app.Visibility
	Likes      *engagement.Likes
	Bookmarks  *engagement.Bookmarks
	Local      *engagement.Interactions
	Notify     app.Notifier
	Log        *zap.Logger
	Options    []engagement.Option
}

var mounts atomic.Uint64

// --- Messages ---

type loadedMsg struct {
	mount     uint64
	article   domain.Article
	comments  []domain.Comment
	footnotes []domain.Footnote
	related   []domain.Article
	err       error
}

type statsMsg struct {
	mount uint64
	stats domain.ArticleStats
}

type likedMsg struct {
	mount   uint64
	outcome engagement.LikeOutcome
	err     error
}

type bookmarkedMsg struct {
	mount      uint64
	bookmarked bool
	err        error
}

type glossaryMsg struct {
	mount uint64
	terms []domain.GlossaryTerm
	err   error
}

// --- Model ---

// Model is one mounted article. Close must be called when it leaves the
// screen.
type Model struct {
	deps  Deps
	keys  common.KeyMap
	slug  string
	mount uint64

	ctx       context.Context
	cancel    context.CancelFunc
	heartbeat *engagement.Heartbeat
	gate      *engagement.ViewGate
	live      *engagement.ArticleStatsSubscriber
	statsBox  *common.Mailbox[domain.ArticleStats]

	article    domain.Article
	comments   []domain.Comment
	footnotes  []domain.Footnote
	related    []domain.Article
	stats      domain.ArticleStats
	liked      bool
	bookmarked bool
	busy       bool

	glossary        []domain.GlossaryTerm
	glossaryOpen    bool
	glossaryLoading bool
	glossaryErr     error

	loading bool
	err     error
	spinner spinner.Model

	viewport   viewport.Model
	ready      bool
	lastOffset int
	width      int
	height     int
}

// New mounts the article identified by slug. The engagement context is
// derived from parent and ends with Close.
func New(parent context.Context, deps Deps, slug string, width, height int) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	mount := mounts.Add(1)

	statsBox := common.NewMailbox[domain.ArticleStats]()
	opts := append([]engagement.Option{engagement.WithLogger(deps.Log)}, deps.Options...)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		deps:      deps,
		keys:      common.DefaultKeyMap(),
		slug:      slug,
		mount:     mount,
		ctx:       ctx,
		cancel:    cancel,
		heartbeat: engagement.NewHeartbeat(deps.Analytics, deps.Visibility, opts...),
		live: engagement.NewArticleStatsSubscriber(deps.Streams, func(_ string, st domain.ArticleStats) {
			statsBox.Put(st)
		}, opts...),
		statsBox: statsBox,
		loading:  true,
		spinner:  s,
	}
	m.resize(width, height)
	return m
}

// Slug returns the mounted article's slug.
func (m Model) Slug() string { return m.slug }

// Article returns the loaded article.
func (m Model) Article() domain.Article { return m.article }

// Init loads the article.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Session returns the engagement session of the loaded article. It is
// absent until the article has loaded.
func (m Model) Session() (domain.EngagementSession, bool) {
	if m.gate == nil {
		return domain.EngagementSession{}, false
	}
	return m.gate.Session(), true
}

// Close ends every engagement activity of this mount.
func (m Model) Close() {
	m.cancel()
	m.heartbeat.Stop()
	if m.gate != nil {
		m.gate.Stop()
	}
	m.live.Close()

	if s, ok := m.Session(); ok {
		m.deps.Log.Debug("article closed",
			zap.String("article", s.ContentID),
			zap.String("session", s.SessionID),
			zap.Bool("view_confirmed", s.HasConfirmedView),
			zap.Time("mounted_at", s.MountedAt),
		)
	}
}

func (m Model) load() tea.Cmd {
	ctx, articles, slug, mount, log := m.ctx, m.deps.Articles, m.slug, m.mount, m.deps.Log
	return func() tea.Msg {
		a, err := articles.Get(ctx, slug)
		if err != nil {
			return loadedMsg{mount: mount, err: err}
		}
		msg := loadedMsg{mount: mount, article: a}
		// Secondary sections degrade to empty.
		if msg.comments, err = articles.Comments(ctx, slug); err != nil {
			log.Debug("loading comments", zap.String("slug", slug), zap.Error(err))
		}
		if msg.footnotes, err = articles.Footnotes(ctx, slug); err != nil {
			log.Debug("loading footnotes", zap.String("slug", slug), zap.Error(err))
		}
		if msg.related, err = articles.Recommendations(ctx, slug); err != nil {
			log.Debug("loading recommendations", zap.String("slug", slug), zap.Error(err))
		}
		return msg
	}
}

// startEngagement begins presence, view confirmation and live stats for
// the loaded article. It runs once per mount.
func (m Model) startEngagement() (Model, tea.Cmd) {
	if m.gate != nil || m.article.ID == "" {
		return m, nil
	}
	opts := append([]engagement.Option{engagement.WithLogger(m.deps.Log)}, m.deps.Options...)

	m.heartbeat.Start(m.ctx, m.article.ID)
	m.gate = engagement.NewViewGate(m.ctx, m.deps.Analytics, m.article.ID, opts...)
	m.live.Switch(m.ctx, m.article.ID, domain.ArticleStats{})
	return m, m.waitStats()
}

func (m Model) waitStats() tea.Cmd {
	mount := m.mount
	return common.WaitCmd(m.ctx, m.statsBox, func(st domain.ArticleStats) tea.Msg {
		return statsMsg{mount: mount, stats: st}
	})
}

func (m Model) toggleLike() tea.Cmd {
	ctx, likes, a, mount := m.ctx, m.deps.Likes, m.article, m.mount
	return func() tea.Msg {
		out, err := likes.Toggle(ctx, a)
		return likedMsg{mount: mount, outcome: out, err: err}
	}
}

func (m Model) toggleBookmark() tea.Cmd {
	ctx, bookmarks, id, mount := m.ctx, m.deps.Bookmarks, m.article.ID, m.mount
	return func() tea.Msg {
		on, err := bookmarks.Toggle(ctx, id)
		return bookmarkedMsg{mount: mount, bookmarked: on, err: err}
	}
}

func (m Model) loadGlossary() tea.Cmd {
	ctx, articles, content, mount := m.ctx, m.deps.Articles, m.article.Content, m.mount
	return func() tea.Msg {
		terms, err := articles.Glossary(ctx, content)
		return glossaryMsg{mount: mount, terms: terms, err: err}
	}
}

func (m Model) notify(kind domain.NoticeKind, text string) {
	if m.deps.Notify != nil {
		m.deps.Notify.Notify(domain.Notice{Kind: kind, Text: text})
	}
}
