package common

import "github.com/charmbracelet/lipgloss"

// Theme names persisted in client storage.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type palette struct {
	accent, title, author, muted, text, border, live, bad, good string
}

var palettes = map[string]palette{
	ThemeDark: {
		accent: "#C6A0F6", title: "#F5A97F", author: "#7DC4E4", muted: "#6E738D",
		text: "#CAD3F5", border: "#45475A", live: "#A6DA95", bad: "#ED8796", good: "#A6DA95",
	},
	ThemeLight: {
		accent: "#8839EF", title: "#D20F39", author: "#1E66F5", muted: "#8C8FA1",
		text: "#4C4F69", border: "#BCC0CC", live: "#40A02B", bad: "#D20F39", good: "#40A02B",
	},
}

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle lipgloss.Style

	// TaglineStyle styles the app's tagline.
	TaglineStyle lipgloss.Style

	// ArticleTitleStyle styles article headlines.
	ArticleTitleStyle lipgloss.Style

	// AuthorStyle styles author names.
	AuthorStyle lipgloss.Style

	// MetaStyle styles dates, categories and counters.
	MetaStyle lipgloss.Style

	// ContentStyle styles body text.
	ContentStyle lipgloss.Style

	// SectionStyle styles section headings such as "Comments".
	SectionStyle lipgloss.Style

	// LiveStyle marks realtime values.
	LiveStyle lipgloss.Style

	// SelectedStyle highlights the selected list item.
	SelectedStyle lipgloss.Style

	// UnselectedStyle gives unselected items a subtle border.
	UnselectedStyle lipgloss.Style

	// PanelStyle frames side panels (glossary, login prompt).
	PanelStyle lipgloss.Style

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle lipgloss.Style

	// ErrorStyle styles error messages.
	ErrorStyle lipgloss.Style

	// SuccessStyle styles success messages.
	SuccessStyle lipgloss.Style
)

var currentTheme = ThemeDark

func init() { ApplyTheme(ThemeDark) }

// CurrentTheme returns the active theme name.
func CurrentTheme() string { return currentTheme }

// NextTheme returns the theme that follows name.
func NextTheme(name string) string {
	if name == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ApplyTheme rebuilds the shared styles for the named theme. Unknown names
// fall back to dark. It must be called from the UI goroutine.
func ApplyTheme(name string) {
	p, ok := palettes[name]
	if !ok {
		name, p = ThemeDark, palettes[ThemeDark]
	}
	currentTheme = name

	AppTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(p.accent)).
		Padding(1, 2, 0, 1)

	TaglineStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.muted)).
		Italic(true).
		MarginLeft(1)

	ArticleTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(p.title))

	AuthorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(p.author))

	MetaStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.muted))

	ContentStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.text))

	SectionStyle = lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Foreground(lipgloss.Color(p.accent))

	LiveStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.live)).
		Bold(true)

	SelectedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.accent)).
		Padding(0, 1)

	UnselectedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.border)).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(p.border)).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.muted)).
		Padding(1, 0, 0, 0)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.bad)).
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.good)).
		Bold(true)
}
