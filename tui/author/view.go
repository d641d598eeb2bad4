package author

import (
	"fmt"
	"strings"

	"github.com/sussurros/journalterm/tui/common"
)

// View renders the author screen.
func (m Model) View() string {
	switch {
	case m.loading && m.profile.Username == "":
		return m.spinner.View() + " Loading profile...\n"
	case m.err != nil:
		return common.ErrorStyle.Render("Error: "+m.err.Error()) + "\n" +
			common.MetaStyle.Render("Press r to retry • esc to go back") + "\n"
	}

	p := m.profile
	width := max(m.width-4, 20)
	var b strings.Builder

	name := common.ArticleTitleStyle.Render(p.DisplayName())
	b.WriteString(name + " " + common.AuthorStyle.Render("@"+p.Username))
	if m.following {
		b.WriteString("  " + common.SuccessStyle.Render("✓ following"))
	}
	b.WriteString("\n")

	var about []string
	if p.Institution != "" {
		about = append(about, p.Institution)
	}
	if p.Area != "" {
		about = append(about, p.Area)
	}
	if len(about) > 0 {
		b.WriteString(common.MetaStyle.Render(strings.Join(about, " · ")) + "\n")
	}
	if p.Bio != "" {
		b.WriteString("\n" + common.ContentStyle.Render(common.Wrap(p.Bio, width)) + "\n")
	}

	b.WriteString("\n" + common.PanelStyle.Render(m.statsLine()) + "\n")

	b.WriteString("\n" + common.SectionStyle.Render(fmt.Sprintf("Articles (%d)", len(m.articles))) + "\n")
	if len(m.articles) == 0 {
		b.WriteString(common.MetaStyle.Render("No published articles.") + "\n")
	}
	for i, a := range m.articles {
		line := common.Truncate(a.Title, width-2)
		if i == m.cursor {
			b.WriteString(common.SelectedStyle.Render("› "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + common.MetaStyle.Render(common.Hints(
		m.keys.Back, m.keys.Follow, m.keys.Message, m.keys.Open)))
	return b.String()
}

func (m Model) statsLine() string {
	articles := m.profile.Articles
	return strings.Join([]string{
		common.FormatCount(articles) + " " + common.Plural(articles, "article", "articles"),
		common.LiveStyle.Render(common.FormatCount(m.stats.Views)) + " " + common.Plural(m.stats.Views, "read", "reads"),
		common.LiveStyle.Render(common.FormatCount(m.stats.Followers)) + " " + common.Plural(m.stats.Followers, "follower", "followers"),
		common.LiveStyle.Render(common.FormatCount(m.stats.Karma)) + " karma",
	}, "   ")
}
