package api

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// stripHTML removes HTML tags and decodes common entities.
// Good enough for terminal display; not a security boundary.
var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)</p>|</h[1-6]>|</li>|<br\s*/?>`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
)

func stripHTML(s string) string {
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return sanitizeForTerminal(strings.TrimSpace(s))
}

// sanitizeForTerminal drops escape sequences and control characters
// other than newline and tab from server-provided text.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// flexID accepts both string and numeric JSON identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (id flexID) String() string { return string(id) }

// parseDate accepts the API's "02 Jan 2006" display format and RFC 3339.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"02 Jan 2006", time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeList decodes either a bare JSON array or a paginated
// {"results": [...]} envelope.
func decodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var out []T
		err := json.Unmarshal(data, &out)
		return out, err
	}
	var page struct {
		Results []T `json:"results"`
	}
	err := json.Unmarshal(data, &page)
	return page.Results, err
}
