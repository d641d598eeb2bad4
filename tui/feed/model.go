// Package feed is the article list shown at startup and for bookmarks.
package feed

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// Mode selects which articles the feed lists.
type Mode int

const (
	ModeLatest Mode = iota
	ModeBookmarks
)

func (m Mode) String() string {
	if m == ModeBookmarks {
		return "Bookmarks"
	}
	return "Latest"
}

// Deps are the services the feed reads from.
type Deps struct {
	Articles  app.ArticleService
	Bookmarks app.BookmarkService
	Auth      app.AuthState
	Local     *engagement.Interactions
}

// --- Messages ---

// ArticlesLoadedMsg carries the result of a list fetch.
type ArticlesLoadedMsg struct {
	Seq      int
	Articles []domain.Article
	Err      error
}

// categoriesLoadedMsg carries the category names for the filter.
type categoriesLoadedMsg struct {
	names []string
	err   error
}

// --- Model ---

// Model holds the article list state.
type Model struct {
	ctx       context.Context
	deps      Deps
	keys      common.KeyMap
	mode      Mode
	query     string
	category  string
	articles  []domain.Article
	record    domain.InteractionRecord
	cursor    int
	loading   bool
	err       error
	seq       int
	spinner   spinner.Model
	search    textinput.Model
	searching bool
	width     int
	height    int

	categories    []string
	categoriesErr error
}

// New creates a feed in mode. Fetches end with ctx.
func New(ctx context.Context, deps Deps, mode Mode) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "search articles"
	ti.CharLimit = 120
	ti.Prompt = "/ "

	m := Model{
		ctx:     ctx,
		deps:    deps,
		keys:    common.DefaultKeyMap(),
		mode:    mode,
		spinner: s,
		search:  ti,
		loading: true,
	}
	if deps.Local != nil {
		m.record = deps.Local.Load()
	}
	return m
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Mode returns the active list mode.
func (m Model) Mode() Mode { return m.mode }

// Category returns the active category filter; empty lists every category.
func (m Model) Category() string { return m.category }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searching }

// Selected returns the article under the cursor.
func (m Model) Selected() (domain.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.articles) {
		return domain.Article{}, false
	}
	return m.articles[m.cursor], true
}

// SetMode switches the list and refetches.
func (m Model) SetMode(mode Mode) (Model, tea.Cmd) {
	m.mode = mode
	m.cursor = 0
	return m.reload()
}

func (m Model) reload() (Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	ctx, deps, mode, query, category, seq := m.ctx, m.deps, m.mode, m.query, m.category, m.seq
	return func() tea.Msg {
		var (
			articles []domain.Article
			err      error
		)
		if mode == ModeBookmarks {
			articles, err = loadBookmarks(ctx, deps)
		} else {
			articles, err = deps.Articles.List(ctx, query, category)
		}
		if ctx.Err() != nil {
			return nil
		}
		return ArticlesLoadedMsg{Seq: seq, Articles: articles, Err: err}
	}
}

func (m Model) fetchCategories() tea.Cmd {
	ctx, articles := m.ctx, m.deps.Articles
	return func() tea.Msg {
		names, err := articles.Categories(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return categoriesLoadedMsg{names: names, err: err}
	}
}

// nextCategory moves the filter to the category after the current one,
// wrapping to all categories after the last.
func (m Model) nextCategory() (Model, tea.Cmd) {
	i := 0
	if m.category != "" {
		for j, name := range m.categories {
			if name == m.category {
				i = j + 1
				break
			}
		}
	}
	next := ""
	if i < len(m.categories) {
		next = m.categories[i]
	}
	m.category = next
	m.mode = ModeLatest
	m.cursor = 0
	return m.reload()
}

// loadBookmarks reads the server list when logged in and otherwise keeps
// the published articles bookmarked on this machine.
func loadBookmarks(ctx context.Context, deps Deps) ([]domain.Article, error) {
	if deps.Auth != nil && deps.Auth.Authenticated() && deps.Bookmarks != nil {
		return deps.Bookmarks.List(ctx)
	}
	all, err := deps.Articles.List(ctx, "", "")
	if err != nil {
		return nil, err
	}
	if deps.Local == nil {
		return nil, nil
	}
	record := deps.Local.Load()
	var out []domain.Article
	for _, a := range all {
		if record.IsBookmarked(strings.TrimSpace(a.ID)) {
			out = append(out, a)
		}
	}
	return out, nil
}
