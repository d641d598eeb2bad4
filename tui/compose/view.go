package compose

import (
	"fmt"
	"strings"

	"github.com/sussurros/journalterm/tui/common"
)

// View renders the compose view based on the active mode.
func (m Model) View() string {
	switch m.mode {
	case editorMode:
		return m.status + "\n"

	case inlineMode:
		var b strings.Builder
		b.WriteString(common.AppTitleStyle.Render("journalterm"))
		b.WriteString("  New " + m.target.Kind.String())
		if m.target.Title != "" {
			b.WriteString(" · " + common.MetaStyle.Render(m.target.Title))
		}
		b.WriteString("\n\n")
		b.WriteString(m.textarea.View())
		b.WriteString("\n\n")
		b.WriteString(common.StatusBarStyle.Render(
			fmt.Sprintf("  ctrl+s: send • esc: cancel • %d/%d chars",
				len([]rune(m.textarea.Value())), charLimit),
		))
		return b.String()
	}

	return ""
}
