package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journalterm.log")
	logger, err := New("info", path, "dsn-1")
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "hello") || !strings.Contains(text, "dsn-1") {
		t.Fatalf("expected entry with telemetry field: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug entry must be filtered at info level")
	}
}

func TestNew_EmptyPathIsNop(t *testing.T) {
	logger, err := New("debug", "", "")
	if err != nil || logger == nil {
		t.Fatalf("expected nop logger, err=%v", err)
	}
}
