package feed

import (
	"fmt"
	"strings"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

const itemHeight = 4

// View renders the article list.
func (m Model) View() string {
	var b strings.Builder

	title := common.AppTitleStyle.Render("Sussurros do Saber")
	tagline := common.TaglineStyle.Render(m.mode.String())
	if m.query != "" {
		tagline = common.TaglineStyle.Render(fmt.Sprintf("Search: %q", m.query))
	}
	if m.category != "" && m.mode == ModeLatest {
		tagline += common.TaglineStyle.Render(" · " + m.category)
	}
	b.WriteString(title + "  " + tagline + "\n")
	if m.categoriesErr != nil {
		b.WriteString(common.ErrorStyle.Render("Categories unavailable: "+m.categoriesErr.Error()) + "\n")
	}
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View() + "\n\n")
	}

	switch {
	case m.loading && len(m.articles) == 0:
		b.WriteString(m.spinner.View() + " Loading articles...\n")
		return b.String()
	case m.err != nil && len(m.articles) == 0:
		b.WriteString(common.ErrorStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(common.MetaStyle.Render("Press r to retry") + "\n")
		return b.String()
	case len(m.articles) == 0:
		b.WriteString(m.emptyText() + "\n")
		return b.String()
	}

	start, end := m.window()
	width := m.contentWidth()
	for i := start; i < end; i++ {
		item := m.renderItem(m.articles[i], width)
		if i == m.cursor {
			b.WriteString(common.SelectedStyle.Width(width).Render(item))
		} else {
			b.WriteString(common.UnselectedStyle.Width(width).Render(item))
		}
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " Refreshing...\n")
	}
	return b.String()
}

func (m Model) emptyText() string {
	switch {
	case m.mode == ModeBookmarks:
		return common.MetaStyle.Render("No bookmarks yet. Press b on an article to save it.")
	case m.query != "" || m.category != "":
		return common.MetaStyle.Render("No articles match. Press esc to clear the filter.")
	}
	return common.MetaStyle.Render("No articles published yet.")
}

func (m Model) renderItem(a domain.Article, width int) string {
	var marks []string
	if m.record.IsLiked(a.ID) {
		marks = append(marks, "♥")
	}
	if m.record.IsBookmarked(a.ID) {
		marks = append(marks, "★")
	}

	head := common.ArticleTitleStyle.Render(common.Truncate(a.Title, width-6))
	if len(marks) > 0 {
		head += " " + common.LiveStyle.Render(strings.Join(marks, " "))
	}

	meta := []string{common.AuthorStyle.Render(a.Author)}
	if !a.Date.IsZero() {
		meta = append(meta, a.Date.Format("02 Jan 2006"))
	}
	if a.Category != "" {
		meta = append(meta, a.Category)
	}
	if a.ReadTime > 0 {
		meta = append(meta, fmt.Sprintf("%d min", a.ReadTime))
	}
	meta = append(meta,
		common.FormatCount(a.Views)+" "+common.Plural(a.Views, "view", "views"),
		common.FormatCount(a.Likes)+" "+common.Plural(a.Likes, "like", "likes"),
	)

	return head + "\n" +
		common.MetaStyle.Render(strings.Join(meta, " · ")) + "\n" +
		common.ContentStyle.Render(common.Truncate(a.Excerpt, width-4))
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(m.width-4, 20)
}

func (m Model) visibleItems() int {
	if m.height <= 0 {
		return 5
	}
	return max((m.height-6)/itemHeight, 1)
}

// window returns the range of items to draw, keeping the cursor visible.
func (m Model) window() (int, int) {
	n := m.visibleItems()
	start := 0
	if m.cursor >= n {
		start = m.cursor - n + 1
	}
	return start, min(start+n, len(m.articles))
}
