// Package localstore is the client-side key/value storage shared by all
// views, the terminal counterpart of browser local storage. Every write is
// broadcast to subscribers so views holding derived state can re-read it.
package localstore

import (
	"errors"
	"sync"
)

// Keys persisted by the client.
const (
	KeyAccessToken   = "accessToken"
	KeyRefreshToken  = "refreshToken"
	KeyUser          = "user"
	KeyTheme         = "theme"
	KeyInteractions  = "sussurros_user_stats_v2"
	KeyPendingAction = "pending_action"
)

// AnyKey is delivered to subscribers when the changed key is unknown,
// e.g. after another process rewrote the store.
const AnyKey = ""

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("localstore: closed")

// Store is a string-keyed persistent store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key and notifies subscribers.
	Set(key, value string) error

	// Remove deletes key and notifies subscribers. Missing keys are not an error.
	Remove(key string) error

	// Subscribe registers fn to be called with the changed key after every
	// write. The returned func unregisters it.
	Subscribe(fn func(key string)) (cancel func())

	Close() error
}

// broadcaster fans change notifications out to subscribers.
type broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(string)
}

func (b *broadcaster) Subscribe(fn func(key string)) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]func(string))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) publish(key string) {
	b.mu.RLock()
	fns := make([]func(string), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}
