package common

import (
	"context"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sussurros/journalterm/domain"
)

// Mailbox hands the latest value produced by a background goroutine to the
// UI loop. Intermediate values may be skipped; the last one never is.
type Mailbox[T any] struct {
	mu     sync.Mutex
	value  T
	signal chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{signal: make(chan struct{}, 1)}
}

// Put replaces the pending value.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.value = v
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Wait blocks until a value is put or ctx is done.
func (m *Mailbox[T]) Wait(ctx context.Context) (T, bool) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false
	case <-m.signal:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.value, true
	}
}

// WaitCmd returns a command delivering the next value wrapped as a message.
// It yields nil once ctx is done.
func WaitCmd[T any](ctx context.Context, m *Mailbox[T], wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := m.Wait(ctx)
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

// NoticeMsg carries a notice into the UI loop.
type NoticeMsg struct {
	Notice domain.Notice
}

// Notices is an app.Notifier queueing notices for the UI loop.
type Notices struct {
	ch chan domain.Notice
}

// NewNotices creates a notice queue.
func NewNotices() *Notices {
	return &Notices{ch: make(chan domain.Notice, 32)}
}

// Notify queues n. When the queue is full the notice is dropped.
func (n *Notices) Notify(notice domain.Notice) {
	select {
	case n.ch <- notice:
	default:
	}
}

// Next returns a command delivering the next notice. It yields nil once
// ctx is done.
func (n *Notices) Next(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case notice := <-n.ch:
			return NoticeMsg{Notice: notice}
		}
	}
}

// Focus tracks whether the terminal has focus. It implements
// app.Visibility and starts out visible.
type Focus struct {
	hidden atomic.Bool
}

// Visible reports whether the terminal is focused.
func (f *Focus) Visible() bool { return !f.hidden.Load() }

// Set records a focus change.
func (f *Focus) Set(visible bool) { f.hidden.Store(!visible) }
