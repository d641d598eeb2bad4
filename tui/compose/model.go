package compose

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/infra/editor"
)

// --- Mode ---

type mode int

const (
	editorMode mode = iota
	inlineMode
)

// Kind is what the composed text becomes.
type Kind int

const (
	KindComment Kind = iota
	KindFootnote
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindFootnote:
		return "footnote"
	case KindMessage:
		return "message"
	}
	return "comment"
}

// Target identifies what is being written and where it goes.
type Target struct {
	Kind     Kind
	Slug     string // Article slug for comments and footnotes
	Title    string // Shown in the editor header
	Username string // Author for messages
}

const charLimit = 2000

// --- Messages ---

// DoneMsg is sent when composing is complete (success or cancel).
type DoneMsg struct {
	Target  Target
	Content string // Empty if cancelled
	Err     error
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// --- Model ---

// Model holds the state for the compose view.
type Model struct {
	mode     mode
	target   Target
	editor   *editor.EnvEditor
	status   string
	textarea textarea.Model // Only used in inline mode
}

// NewEditor creates a compose model that opens $EDITOR via tea.Exec.
func NewEditor(ed *editor.EnvEditor, target Target) Model {
	return Model{
		mode:   editorMode,
		target: target,
		editor: ed,
		status: "Opening editor...",
	}
}

// NewInline creates a compose model with an inline Bubble Tea textarea.
func NewInline(target Target) Model {
	ta := textarea.New()
	ta.Placeholder = placeholder(target.Kind)
	ta.CharLimit = charLimit
	ta.SetWidth(72)
	ta.SetHeight(6)
	ta.Focus()

	return Model{
		mode:     inlineMode,
		target:   target,
		textarea: ta,
	}
}

func placeholder(k Kind) string {
	switch k {
	case KindFootnote:
		return "A reference or clarification for this article..."
	case KindMessage:
		return "Write to the author..."
	}
	return "Share your thoughts on this article..."
}

// Target returns what is being composed.
func (m Model) Target() Target { return m.target }

// Init returns the initial command for the active mode.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case editorMode:
		return m.launchEditor()
	case inlineMode:
		return textarea.Blink
	}
	return nil
}

// launchEditor prepares the editor command and uses tea.Exec to properly
// suspend Bubble Tea's raw terminal mode while the editor runs.
func (m Model) launchEditor() tea.Cmd {
	target := m.target
	cmd, tmpPath, err := m.editor.Cmd("", target.Kind.String(), target.Title)
	if err != nil {
		return func() tea.Msg {
			return DoneMsg{Target: target, Err: fmt.Errorf("preparing editor: %w", err)}
		}
	}

	// tea.ExecProcess suspends Bubble Tea, runs the command with full terminal
	// control, then resumes Bubble Tea and delivers the callback message.
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	// --- Editor mode messages ---

	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(DoneMsg{Target: m.target, Err: fmt.Errorf("editor: %w", msg.err)})
		}

		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, done(DoneMsg{Target: m.target, Err: err})
		}
		return m, done(DoneMsg{Target: m.target, Content: content})

	// --- Inline mode messages ---

	case tea.KeyMsg:
		if m.mode != inlineMode {
			break
		}

		switch msg.String() {
		case "esc":
			return m, done(DoneMsg{Target: m.target}) // Cancel.

		case "ctrl+s":
			return m, done(DoneMsg{Target: m.target, Content: m.textarea.Value()})
		}

		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	// Pass through any remaining messages to textarea in inline mode.
	if m.mode == inlineMode {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	return m, nil
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// RequestMsg asks the root model to open a compose view for Target.
type RequestMsg struct {
	Target Target
	Inline bool
}
