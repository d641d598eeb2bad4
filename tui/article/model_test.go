package article

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	testclock "k8s.io/utils/clock/testing"

	"github.com/sussurros/journalterm/app/engagement"
	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/tui/common"
	"github.com/sussurros/journalterm/tui/compose"
)

func mountLoaded(t *testing.T, deps Deps) Model {
	t.Helper()
	m := New(context.Background(), deps, "on-qubits", 80, 24)
	t.Cleanup(m.Close)
	m, _ = m.Update(m.load()())
	if m.article.ID == "" {
		t.Fatalf("article not loaded: %v", m.err)
	}
	return m
}

func TestArticle_LoadStartsEngagement(t *testing.T) {
	deps, analytics, streams, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	waitUntil(t, func() bool { p, _ := analytics.counts(); return p == 1 })
	waitUntil(t, func() bool {
		streams.mu.Lock()
		defer streams.mu.Unlock()
		return streams.open == 1
	})
	if m.gate == nil || m.gate.Confirmed() {
		t.Fatal("expected an armed view gate after load")
	}
}

func TestArticle_ScrollPastThresholdConfirmsOnce(t *testing.T) {
	deps, analytics, _, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	for i := 0; i < 10; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	}
	select {
	case <-m.gate.Sent():
	case <-time.After(2 * time.Second):
		t.Fatal("view was not confirmed after scrolling")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgUp})

	if _, views := analytics.counts(); views != 1 {
		t.Fatalf("expected exactly one view confirmation, got %d", views)
	}
}

func TestArticle_ConfiguredDwellConfirmsView(t *testing.T) {
	deps, analytics, _, _ := newTestDeps(t, longArticle())
	mounted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fc := testclock.NewFakeClock(mounted)
	deps.Options = []engagement.Option{engagement.WithClock(fc), engagement.WithDwell(2 * time.Second)}
	m := mountLoaded(t, deps)

	s, ok := m.Session()
	if !ok || s.ContentID != "42" || s.Kind != domain.ContentArticle || !s.MountedAt.Equal(mounted) {
		t.Fatalf("unexpected session %#v ok=%v", s, ok)
	}

	fc.Step(time.Second)
	if m.gate.Confirmed() {
		t.Fatal("confirmed before the configured dwell")
	}
	fc.Step(time.Second)
	select {
	case <-m.gate.Sent():
	case <-time.After(2 * time.Second):
		t.Fatal("view was not confirmed after the configured dwell")
	}
	if _, views := analytics.counts(); views != 1 {
		t.Fatalf("expected one view confirmation, got %d", views)
	}
	if s, _ := m.Session(); !s.HasConfirmedView {
		t.Fatal("session must report the confirmed view")
	}
}

func TestArticle_CloseEndsStream(t *testing.T) {
	deps, _, streams, _ := newTestDeps(t, longArticle())
	m := New(context.Background(), deps, "on-qubits", 80, 24)
	m, _ = m.Update(m.load()())

	m.Close()
	select {
	case id := <-streams.closed:
		if id != "42" {
			t.Fatalf("unexpected stream closed: %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after Close")
	}
}

func TestArticle_LiveStatsShowInHeader(t *testing.T) {
	deps, _, _, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	m, cmd := m.Update(statsMsg{mount: m.mount, stats: domain.ArticleStats{ViewsDelta: 5, ReadingNow: 2}})
	if cmd == nil {
		t.Fatal("expected to keep waiting for stats")
	}
	header := m.header()
	if !strings.Contains(header, "105 views") || !strings.Contains(header, "2 reading now") {
		t.Fatalf("unexpected header: %q", header)
	}

	other, _ := m.Update(statsMsg{mount: m.mount + 1000, stats: domain.ArticleStats{ViewsDelta: 50}})
	if other.stats.ViewsDelta != 5 {
		t.Fatal("stats of another mount must be ignored")
	}
}

func TestArticle_LikeFlipsAndSettles(t *testing.T) {
	deps, _, _, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if !m.liked || !m.busy || cmd == nil {
		t.Fatal("expected optimistic like and a pending request")
	}
	m, _ = m.Update(cmd())
	if !m.liked || m.busy || m.article.Likes != 1 {
		t.Fatalf("unexpected settled state: liked=%v busy=%v likes=%d", m.liked, m.busy, m.article.Likes)
	}
	if !deps.Local.IsLiked("42") {
		t.Fatal("like not persisted locally")
	}
}

func TestArticle_CommentRequestsCompose(t *testing.T) {
	deps, _, _, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'C'}})
	req, ok := cmd().(compose.RequestMsg)
	if !ok || !req.Inline || req.Target.Kind != compose.KindComment || req.Target.Slug != "on-qubits" {
		t.Fatalf("unexpected compose request %#v", req)
	}
}

func TestArticle_GlossaryLoadsOnFirstOpen(t *testing.T) {
	deps, _, _, _ := newTestDeps(t, longArticle())
	m := mountLoaded(t, deps)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if !m.glossaryOpen || !m.glossaryLoading || cmd == nil {
		t.Fatal("expected glossary to open and load")
	}
	m, _ = m.Update(m.loadGlossary()())
	if !strings.Contains(m.View(), "Qubit") {
		t.Fatalf("glossary term missing from view:\n%s", m.View())
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.glossaryOpen || cmd != nil {
		t.Fatal("esc should close the glossary before leaving")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(common.BackMsg); !ok {
		t.Fatal("expected BackMsg")
	}
}
