package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// EnvEditor prepares an external editor command using $EDITOR (fallback: "vi").
// It does NOT run the editor itself. Callers use tea.Exec with the returned
// *exec.Cmd so Bubble Tea properly suspends raw terminal mode.
type EnvEditor struct{}

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const instructionComment = `<!--
journalterm: Write your %s below.

- SAVE and EXIT to submit (e.g., :wq in vi).
- Emptying the file cancels.
- %s
%s-->

`

// instructions renders the header for a text of the given kind, naming
// what it is about when title is set.
func instructions(kind, title string) string {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "comment"
	}
	note := "Messages are delivered to the author."
	if kind != "message" {
		note = strings.ToUpper(kind[:1]) + kind[1:] + "s are published after moderation."
	}
	about := ""
	if title = strings.TrimSpace(title); title != "" {
		about = "\nAbout: " + title + "\n"
	}
	return fmt.Sprintf(instructionComment, kind, note, about)
}

// Cmd prepares an *exec.Cmd for the editor and a temp file path.
// It writes the instruction comment for kind (comment, footnote or
// message), followed by content.
func (e *EnvEditor) Cmd(content, kind, title string) (*exec.Cmd, string, error) {
	editorCmd := os.Getenv("EDITOR")
	if editorCmd == "" {
		editorCmd = "vi"
	}

	tmpFile, err := os.CreateTemp("", "journalterm-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(instructions(kind, title) + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	cmd := exec.Command(editorCmd, tmpPath)
	return cmd, tmpPath, nil
}

// ReadContent reads the temp file, trims whitespace, and removes the file.
// It strips the instruction comment before returning.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if idx := strings.Index(content, "-->"); idx != -1 {
		content = content[idx+3:]
	}
	return strings.TrimSpace(content), nil
}
