package engagement

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sussurros/journalterm/domain"
	"github.com/sussurros/journalterm/infra/localstore"
)

// Interactions is the locally persisted like/bookmark membership shared
// by every view. Writes are broadcast through the store.
type Interactions struct {
	store localstore.Store
	log   *zap.Logger
	mu    sync.Mutex
}

// NewInteractions creates an Interactions over store.
func NewInteractions(store localstore.Store, log *zap.Logger) *Interactions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interactions{store: store, log: log}
}

// Load returns the normalized record. Missing or corrupt data reads as
// empty.
func (i *Interactions) Load() domain.InteractionRecord {
	raw, ok, err := i.store.Get(localstore.KeyInteractions)
	if err != nil {
		i.log.Warn("reading interactions", zap.Error(err))
		return domain.InteractionRecord{}
	}
	if !ok {
		return domain.InteractionRecord{}
	}
	rec, err := decodeInteractions(raw)
	if err != nil {
		i.log.Warn("discarding corrupt interactions", zap.Error(err))
		return domain.InteractionRecord{}
	}
	return rec
}

// IsLiked reports whether the article is liked locally.
func (i *Interactions) IsLiked(id string) bool { return i.Load().IsLiked(normalizeID(id)) }

// IsBookmarked reports whether the article is bookmarked locally.
func (i *Interactions) IsBookmarked(id string) bool {
	return i.Load().IsBookmarked(normalizeID(id))
}

// ToggleLiked flips the like of id and returns the new membership.
func (i *Interactions) ToggleLiked(id string) (bool, error) {
	return i.update(id, func(r *domain.InteractionRecord, id string) bool {
		on := !r.IsLiked(id)
		r.Liked = setMember(r.Liked, id, on)
		return on
	})
}

// ToggleBookmarked flips the bookmark of id and returns the new membership.
func (i *Interactions) ToggleBookmarked(id string) (bool, error) {
	return i.update(id, func(r *domain.InteractionRecord, id string) bool {
		on := !r.IsBookmarked(id)
		r.Bookmarked = setMember(r.Bookmarked, id, on)
		return on
	})
}

// SetLiked forces the like membership of id.
func (i *Interactions) SetLiked(id string, on bool) error {
	_, err := i.update(id, func(r *domain.InteractionRecord, id string) bool {
		r.Liked = setMember(r.Liked, id, on)
		return on
	})
	return err
}

// SetBookmarked forces the bookmark membership of id.
func (i *Interactions) SetBookmarked(id string, on bool) error {
	_, err := i.update(id, func(r *domain.InteractionRecord, id string) bool {
		r.Bookmarked = setMember(r.Bookmarked, id, on)
		return on
	})
	return err
}

// Subscribe calls fn with the fresh record whenever it may have changed,
// including writes by other processes sharing the store.
func (i *Interactions) Subscribe(fn func(domain.InteractionRecord)) (cancel func()) {
	return i.store.Subscribe(func(key string) {
		if key == localstore.KeyInteractions || key == localstore.AnyKey {
			fn(i.Load())
		}
	})
}

func (i *Interactions) update(id string, mutate func(*domain.InteractionRecord, string) bool) (bool, error) {
	id = normalizeID(id)
	if !validID(id) {
		return false, fmt.Errorf("invalid article id %q", id)
	}

	i.mu.Lock()
	rec := i.Load()
	on := mutate(&rec, id)
	if rec.Liked == nil {
		rec.Liked = []string{}
	}
	if rec.Bookmarked == nil {
		rec.Bookmarked = []string{}
	}
	data, err := json.Marshal(rec)
	if err == nil {
		err = i.store.Set(localstore.KeyInteractions, string(data))
	}
	i.mu.Unlock()

	if err != nil {
		return false, fmt.Errorf("saving interactions: %w", err)
	}
	return on, nil
}

func decodeInteractions(raw string) (domain.InteractionRecord, error) {
	var doc struct {
		Liked      json.RawMessage `json:"likedArticles"`
		Bookmarked json.RawMessage `json:"bookmarkedArticles"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.InteractionRecord{}, err
	}
	return domain.InteractionRecord{
		Liked:      normalizeIDs(doc.Liked),
		Bookmarked: normalizeIDs(doc.Bookmarked),
	}, nil
}

// normalizeIDs turns a JSON array of ids into unique strings, dropping
// empty and placeholder entries. Anything but an array yields nil.
func normalizeIDs(raw json.RawMessage) []string {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		var id string
		switch v := it.(type) {
		case string:
			id = normalizeID(v)
		case float64:
			id = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}
		if !validID(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeID(id string) string { return strings.TrimSpace(id) }

func validID(id string) bool {
	return id != "" && id != "undefined" && id != "null"
}

func setMember(set []string, id string, on bool) []string {
	out := make([]string, 0, len(set)+1)
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	if on {
		out = append(out, id)
	}
	return out
}
