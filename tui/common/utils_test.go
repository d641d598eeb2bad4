package common

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1k", 1250: "1.2k", 2_500_000: "2.5M", -3: "-3"}
	for in, want := range tests {
		if got := FormatCount(in); got != want {
			t.Fatalf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateAndWrap(t *testing.T) {
	if got := Truncate("Entropia e informação", 8); ansi.StringWidth(got) > 8 || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected truncate result %q", got)
	}
	if got := Truncate("curto", 10); got != "curto" {
		t.Fatalf("short strings must be kept, got %q", got)
	}
	for _, line := range strings.Split(Wrap("uma frase razoavelmente longa para quebrar", 12), "\n") {
		if ansi.StringWidth(line) > 12 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestApplyTheme_FallsBackToDark(t *testing.T) {
	defer ApplyTheme(ThemeDark)
	ApplyTheme(ThemeLight)
	if CurrentTheme() != ThemeLight {
		t.Fatalf("expected light theme")
	}
	ApplyTheme("neon")
	if CurrentTheme() != ThemeDark {
		t.Fatalf("expected fallback to dark, got %q", CurrentTheme())
	}
	if NextTheme(ThemeDark) != ThemeLight || NextTheme(ThemeLight) != ThemeDark {
		t.Fatalf("unexpected theme cycle")
	}
}
