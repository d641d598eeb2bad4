package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/auth"
	"github.com/sussurros/journalterm/infra/editor"
	"github.com/sussurros/journalterm/infra/localstore"
	"github.com/sussurros/journalterm/tui/article"
	"github.com/sussurros/journalterm/tui/author"
	"github.com/sussurros/journalterm/tui/common"
	"github.com/sussurros/journalterm/tui/compose"
	"github.com/sussurros/journalterm/tui/feed"
	"github.com/sussurros/journalterm/tui/login"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Articles  app.ArticleService
	Authors   app.AuthorService
	Bookmarks app.BookmarkService
	Analytics app.AnalyticsService
	Streams   app.StreamService
	Session   *auth.Session
	Login     login.Service
	Store     localstore.Store
	Editor    *editor.EnvEditor
	Log       *zap.Logger
	Options   []engagement.Option
	Start     Route
}

// RouteKind names a screen.
type RouteKind int

const (
	RouteFeed RouteKind = iota
	RouteBookmarks
	RouteArticle
	RouteAuthor
)

// Route identifies a screen and what it shows.
type Route struct {
	Kind   RouteKind
	Target string // Article slug or author username
}

type activeView int

const (
	feedView activeView = iota
	articleView
	authorView
)

type authChangedMsg struct{ authenticated bool }

type submittedMsg struct{ notice domain.Notice }

// App is the root Bubble Tea model. It routes between screens and owns the
// engagement controllers shared by them.
type App struct {
	deps    Deps
	ctx     context.Context
	cancel  context.CancelFunc
	keys    common.KeyMap
	notices *common.Notices
	focus   *common.Focus

	local     *engagement.Interactions
	likes     *engagement.Likes
	bookmarks *engagement.Bookmarks
	follows   *engagement.Follows

	active  activeView
	route   Route
	history []Route
	feed    feed.Model
	article article.Model
	author  author.Model
	compose *compose.Model
	login   *login.Model

	records     *common.Mailbox[domain.InteractionRecord]
	authBox     *common.Mailbox[bool]
	authed      bool
	unsubscribe []func()

	status    domain.Notice
	showHints bool
	width     int
	height    int
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	notices := common.NewNotices()
	opts := append([]engagement.Option{engagement.WithLogger(deps.Log)}, deps.Options...)

	local := engagement.NewInteractions(deps.Store, deps.Log)
	pending := engagement.NewPendingActions(deps.Store, opts...)

	a := App{
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
		keys:      common.DefaultKeyMap(),
		notices:   notices,
		focus:     &common.Focus{},
		local:     local,
		likes:     engagement.NewLikes(deps.Articles, local, opts...),
		bookmarks: engagement.NewBookmarks(deps.Bookmarks, deps.Session, local),
		follows:   engagement.NewFollows(deps.Authors, deps.Session, pending, notices, opts...),
		records:   common.NewMailbox[domain.InteractionRecord](),
		authBox:   common.NewMailbox[bool](),
		authed:    deps.Session.Authenticated(),
	}
	a.feed = feed.New(a.ctx, feed.Deps{
		Articles:  deps.Articles,
		Bookmarks: deps.Bookmarks,
		Auth:      deps.Session,
		Local:     local,
	}, feedMode(deps.Start.Kind))

	a.unsubscribe = append(a.unsubscribe,
		local.Subscribe(a.records.Put),
		deps.Session.OnChange(a.authBox.Put),
	)
	loadTheme(deps.Store, deps.Log)
	return a
}

func feedMode(k RouteKind) feed.Mode {
	if k == RouteBookmarks {
		return feed.ModeBookmarks
	}
	return feed.ModeLatest
}

func loadTheme(store localstore.Store, log *zap.Logger) {
	name, ok, err := store.Get(localstore.KeyTheme)
	if err != nil {
		log.Warn("reading theme", zap.Error(err))
		return
	}
	if ok {
		common.ApplyTheme(name)
	}
}

// Init starts the feed, the notice queue and the background watchers.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.feed.Init(),
		a.notices.Next(a.ctx),
		a.waitRecords(),
		a.waitAuth(),
	}
	switch a.deps.Start.Kind {
	case RouteArticle:
		cmds = append(cmds, common.Send(common.OpenArticleMsg{Slug: a.deps.Start.Target}))
	case RouteAuthor:
		cmds = append(cmds, common.Send(common.OpenAuthorMsg{Username: a.deps.Start.Target}))
	}
	return tea.Batch(cmds...)
}

func (a App) waitRecords() tea.Cmd {
	return common.WaitCmd(a.ctx, a.records, func(r domain.InteractionRecord) tea.Msg {
		return common.InteractionsMsg{Record: r}
	})
}

func (a App) waitAuth() tea.Cmd {
	return common.WaitCmd(a.ctx, a.authBox, func(on bool) tea.Msg {
		return authChangedMsg{authenticated: on}
	})
}

// Close ends the current screen and every background watcher.
func (a App) Close() {
	a.closeScreen()
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.cancel()
}

// Update handles messages and routes to the active screen.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-2, 1)}
		a.feed, _ = a.feed.Update(inner)
		return a.forward(inner)

	case tea.FocusMsg:
		a.focus.Set(true)
		return a, nil

	case tea.BlurMsg:
		a.focus.Set(false)
		return a, nil

	case common.NoticeMsg:
		a.status = msg.Notice
		return a, a.notices.Next(a.ctx)

	case submittedMsg:
		a.status = msg.notice
		return a, nil

	case common.InteractionsMsg:
		a.feed, _ = a.feed.Update(msg)
		next, cmd := a.forward(msg)
		return next, tea.Batch(cmd, a.waitRecords())

	case authChangedMsg:
		wait := a.waitAuth()
		if msg.authenticated == a.authed {
			return a, wait
		}
		a.authed = msg.authenticated
		changed := common.AuthChangedMsg{Authenticated: msg.authenticated}
		var feedCmd tea.Cmd
		a.feed, feedCmd = a.feed.Update(changed)
		next, cmd := a.forward(changed)
		return next, tea.Batch(wait, feedCmd, cmd)

	case common.OpenArticleMsg:
		return a.push(Route{Kind: RouteArticle, Target: msg.Slug})

	case common.OpenAuthorMsg:
		return a.push(Route{Kind: RouteAuthor, Target: msg.Username})

	case common.BackMsg:
		return a.pop()

	case common.LoginRequiredMsg:
		return a.openLogin(msg.Reason)

	case login.DoneMsg:
		a.login = nil
		if !msg.Cancelled {
			a.status = domain.Notice{Kind: domain.NoticeSuccess, Text: "Logged in as @" + msg.User.Username + "."}
		}
		return a, nil

	case compose.RequestMsg:
		var c compose.Model
		if msg.Inline || a.deps.Editor == nil {
			c = compose.NewInline(msg.Target)
		} else {
			c = compose.NewEditor(a.deps.Editor, msg.Target)
		}
		a.compose = &c
		return a, c.Init()

	case compose.DoneMsg:
		a.compose = nil
		switch {
		case msg.Err != nil:
			a.status = domain.Notice{Kind: domain.NoticeError, Text: "Error: " + msg.Err.Error()}
			return a, nil
		case msg.Content == "":
			a.status = domain.Notice{Kind: domain.NoticeInfo, Text: "Cancelled."}
			return a, nil
		}
		a.status = domain.Notice{Kind: domain.NoticeInfo, Text: "Sending..."}
		return a, a.submit(msg.Target, msg.Content)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.Close()
			return a, tea.Quit
		}
		if a.login != nil {
			updated, cmd := a.login.Update(msg)
			a.login = &updated
			return a, cmd
		}
		if a.compose != nil {
			updated, cmd := a.compose.Update(msg)
			a.compose = &updated
			return a, cmd
		}
		if next, cmd, ok := a.globalKey(msg); ok {
			return next, cmd
		}
	}

	// Open overlays see every other message too (editor exits, blinks,
	// request results); the screen underneath keeps running.
	var overlayCmd tea.Cmd
	if a.login != nil {
		updated, cmd := a.login.Update(msg)
		a.login = &updated
		overlayCmd = cmd
	}
	if a.compose != nil {
		updated, cmd := a.compose.Update(msg)
		a.compose = &updated
		overlayCmd = tea.Batch(overlayCmd, cmd)
	}

	if a.active == feedView {
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, tea.Batch(overlayCmd, cmd)
	}
	next, cmd := a.forward(msg)
	return next, tea.Batch(overlayCmd, cmd)
}

// globalKey handles bindings that work on every screen.
func (a App) globalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if a.active == feedView && a.feed.Searching() {
		return a, nil, false
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.Close()
		return a, tea.Quit, true

	case key.Matches(msg, a.keys.ToggleHints):
		a.showHints = !a.showHints
		return a, nil, true

	case key.Matches(msg, a.keys.Theme):
		name := common.NextTheme(common.CurrentTheme())
		common.ApplyTheme(name)
		if err := a.deps.Store.Set(localstore.KeyTheme, name); err != nil {
			a.deps.Log.Warn("saving theme", zap.Error(err))
		}
		next, cmd := a.forward(common.ThemeChangedMsg{})
		return next, cmd, true

	case key.Matches(msg, a.keys.Login):
		if a.deps.Session.Authenticated() {
			if err := a.deps.Session.Logout(); err != nil {
				a.status = domain.Notice{Kind: domain.NoticeError, Text: "Logout failed: " + err.Error()}
			} else {
				a.status = domain.Notice{Kind: domain.NoticeInfo, Text: "Logged out."}
			}
			return a, nil, true
		}
		next, cmd := a.openLogin("")
		return next, cmd, true

	case key.Matches(msg, a.keys.Bookmarks):
		a.closeScreen()
		a.active = feedView
		a.history = nil
		mode := feed.ModeBookmarks
		if a.feed.Mode() == feed.ModeBookmarks {
			mode = feed.ModeLatest
		}
		var cmd tea.Cmd
		a.feed, cmd = a.feed.SetMode(mode)
		return a, cmd, true
	}
	return a, nil, false
}

// forward sends msg to the active screen.
func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case articleView:
		a.article, cmd = a.article.Update(msg)
	case authorView:
		a.author, cmd = a.author.Update(msg)
	}
	return a, cmd
}

func (a App) openLogin(reason string) (tea.Model, tea.Cmd) {
	if a.deps.Login == nil {
		return a, nil
	}
	m := login.New(a.deps.Login, reason)
	a.login = &m
	return a, m.Init()
}

// push leaves the current screen and mounts r on top of it.
func (a App) push(r Route) (tea.Model, tea.Cmd) {
	if a.active != feedView {
		a.history = append(a.history, a.route)
	}
	a.closeScreen()
	return a.mount(r)
}

// pop leaves the current screen and remounts the previous one.
func (a App) pop() (tea.Model, tea.Cmd) {
	a.closeScreen()
	if len(a.history) == 0 {
		a.active = feedView
		a.route = Route{Kind: RouteFeed}
		return a, nil
	}
	r := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	return a.mount(r)
}

func (a App) mount(r Route) (tea.Model, tea.Cmd) {
	a.route = r
	height := max(a.height-2, 1)
	switch r.Kind {
	case RouteArticle:
		a.active = articleView
		a.article = article.New(a.ctx, article.Deps{
			Articles:   a.deps.Articles,
			Analytics:  a.deps.Analytics,
			Streams:    a.deps.Streams,
			Visibility: a.focus,
			Likes:      a.likes,
			Bookmarks:  a.bookmarks,
			Local:      a.local,
			Notify:     a.notices,
			Log:        a.deps.Log,
			Options:    a.deps.Options,
		}, r.Target, a.width, height)
		return a, a.article.Init()

	case RouteAuthor:
		a.active = authorView
		a.author = author.New(a.ctx, author.Deps{
			Authors:  a.deps.Authors,
			Articles: a.deps.Articles,
			Streams:  a.deps.Streams,
			Follows:  a.follows,
			Auth:     a.deps.Session,
			Log:      a.deps.Log,
			Options:  a.deps.Options,
		}, r.Target, a.width, height)
		return a, a.author.Init()
	}

	a.active = feedView
	return a, nil
}

func (a App) closeScreen() {
	switch a.active {
	case articleView:
		a.article.Close()
	case authorView:
		a.author.Close()
	}
}

// submit posts composed text to where its target points.
func (a App) submit(t compose.Target, content string) tea.Cmd {
	ctx, deps := a.ctx, a.deps
	name := ""
	if u, ok := deps.Session.User(); ok {
		name = u.Username
	}
	return func() tea.Msg {
		var err error
		var done string
		switch t.Kind {
		case compose.KindComment:
			_, err = deps.Articles.AddComment(ctx, t.Slug, name, content)
			done = "Comment sent. It will appear once approved."
		case compose.KindFootnote:
			err = deps.Articles.SuggestFootnote(ctx, t.Slug, domain.Footnote{Author: name, Content: content})
			done = "Footnote suggested. It will appear once approved."
		case compose.KindMessage:
			err = deps.Authors.SendMessage(ctx, t.Username, app.Message{Name: name, Message: content})
			done = "Message sent to @" + t.Username + "."
		}
		if err != nil {
			deps.Log.Warn("submitting "+t.Kind.String(), zap.Error(err))
			text := "Could not send the " + t.Kind.String()
			if m := engagement.ServerMessage(err); m != "" {
				text += ": " + m
			} else {
				text += "."
			}
			return submittedMsg{notice: domain.Notice{Kind: domain.NoticeError, Text: text}}
		}
		return submittedMsg{notice: domain.Notice{Kind: domain.NoticeSuccess, Text: done}}
	}
}
