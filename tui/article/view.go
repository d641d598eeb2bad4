package article

import (
	"fmt"
	"strings"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
)

// View renders the article screen.
func (m Model) View() string {
	switch {
	case m.loading && m.article.ID == "":
		return m.spinner.View() + " Loading article...\n"
	case m.err != nil:
		return common.ErrorStyle.Render("Error: "+m.err.Error()) + "\n" +
			common.MetaStyle.Render("Press r to retry • esc to go back") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.glossaryOpen {
		b.WriteString(m.glossaryView())
	} else if m.ready {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(common.MetaStyle.Render(m.footer()))
	return b.String()
}

func (m Model) header() string {
	a := m.article
	width := max(m.width, 20)

	title := common.ArticleTitleStyle.Render(common.Truncate(a.Title, width))

	meta := []string{common.AuthorStyle.Render(a.Author)}
	if !a.Date.IsZero() {
		meta = append(meta, a.Date.Format("02 Jan 2006"))
	}
	if a.Category != "" {
		meta = append(meta, a.Category)
	}
	if a.ReadTime > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", a.ReadTime))
	}

	views := m.stats.Views(a.Views)
	counters := []string{
		common.FormatCount(views) + " " + common.Plural(views, "view", "views"),
		m.likeLabel(),
	}
	if m.stats.ReadingNow > 0 {
		counters = append(counters, common.LiveStyle.Render(
			fmt.Sprintf("● %d reading now", m.stats.ReadingNow)))
	}
	if m.bookmarked {
		counters = append(counters, "★ saved")
	}

	return title + "\n" +
		common.MetaStyle.Render(strings.Join(meta, " · ")) + "\n" +
		common.MetaStyle.Render(strings.Join(counters, " · "))
}

func (m Model) likeLabel() string {
	icon := "♡"
	if m.liked {
		icon = "♥"
	}
	return icon + " " + common.FormatCount(m.article.Likes)
}

func (m Model) footer() string {
	return common.Hints(m.keys.Back, m.keys.Like, m.keys.Bookmark, m.keys.Comment,
		m.keys.Footnote, m.keys.Glossary, m.keys.Author)
}

// refreshContent re-renders the scrollable body into the viewport.
func (m *Model) refreshContent() {
	if !m.ready || m.article.ID == "" {
		return
	}
	m.viewport.SetContent(m.body(max(m.viewport.Width-2, 20)))
}

func (m Model) body(width int) string {
	a := m.article
	var b strings.Builder

	if a.Excerpt != "" {
		b.WriteString(common.TaglineStyle.Render(common.Wrap(a.Excerpt, width)))
		b.WriteString("\n\n")
	}
	b.WriteString(common.ContentStyle.Render(common.Wrap(a.Content, width)))
	b.WriteString("\n")

	if len(a.Tags) > 0 {
		b.WriteString("\n" + common.MetaStyle.Render("#"+strings.Join(a.Tags, " #")) + "\n")
	}

	if len(m.footnotes) > 0 {
		b.WriteString("\n" + common.SectionStyle.Render("Footnotes") + "\n")
		for i, fn := range m.footnotes {
			line := fmt.Sprintf("[%d] ", i+1)
			if fn.ReferenceText != "" {
				line += fmt.Sprintf("%q: ", fn.ReferenceText)
			}
			line += fn.Content
			b.WriteString(common.Wrap(line, width) + "\n")
			b.WriteString(common.MetaStyle.Render("    "+fn.Type+" · "+fn.Author) + "\n")
		}
	}

	b.WriteString("\n" + common.SectionStyle.Render(
		fmt.Sprintf("Comments (%d)", len(m.comments))) + "\n")
	if len(m.comments) == 0 {
		b.WriteString(common.MetaStyle.Render("Be the first to comment. Press c.") + "\n")
	}
	for _, c := range m.comments {
		b.WriteString(renderComment(c, width))
	}

	if len(m.related) > 0 {
		b.WriteString("\n" + common.SectionStyle.Render("Related") + "\n")
		for _, r := range m.related {
			b.WriteString("• " + common.Truncate(r.Title, width-2) + "\n")
		}
	}
	return b.String()
}

func renderComment(c domain.Comment, width int) string {
	head := common.AuthorStyle.Render(c.Author)
	if !c.Date.IsZero() {
		head += common.MetaStyle.Render(" · " + c.Date.Format("02 Jan 2006"))
	}
	return head + "\n" + common.Wrap(c.Content, width) + "\n\n"
}

func (m Model) glossaryView() string {
	width := max(m.width-4, 20)
	var b strings.Builder
	b.WriteString(common.SectionStyle.Render("Glossary") + "\n\n")
	switch {
	case m.glossaryLoading:
		b.WriteString(m.spinner.View() + " Extracting terms...")
	case m.glossaryErr != nil:
		b.WriteString(common.ErrorStyle.Render("Could not load the glossary: " + m.glossaryErr.Error()))
	case len(m.glossary) == 0:
		b.WriteString(common.MetaStyle.Render("No terms found."))
	default:
		for _, t := range m.glossary {
			b.WriteString(common.ArticleTitleStyle.Render(t.Term) + "\n")
			b.WriteString(common.Wrap(t.Definition, width) + "\n\n")
		}
	}
	return common.PanelStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}
