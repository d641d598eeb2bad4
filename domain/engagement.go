package domain

import "time"

// ContentKind identifies what a realtime stream or session is scoped to.
type ContentKind string

const (
	ContentArticle ContentKind = "article"
	ContentAuthor  ContentKind = "author"
)

// EngagementSession is the per-mount state of a viewed content item.
// HasConfirmedView only ever goes from false to true.
type EngagementSession struct {
	ContentID        string
	Kind             ContentKind
	SessionID        string
	MountedAt        time.Time
	HasConfirmedView bool
}

// ArticleStats is the realtime snapshot of an article stream.
type ArticleStats struct {
	ViewsDelta int // Views recorded since the article was loaded
	ReadingNow int // Readers currently present
}

// ArticleStatsPatch is a partial stats payload. Nil fields were absent.
type ArticleStatsPatch struct {
	ViewsDelta *int `json:"views_delta,omitempty"`
	ReadingNow *int `json:"reading_now,omitempty"`
}

// Apply merges p into s shallowly: present fields overwrite, absent
// fields are kept.
func (s ArticleStats) Apply(p ArticleStatsPatch) ArticleStats {
	if p.ViewsDelta != nil {
		s.ViewsDelta = *p.ViewsDelta
	}
	if p.ReadingNow != nil {
		s.ReadingNow = *p.ReadingNow
	}
	return s
}

// Views returns the displayed view count given the count loaded with the
// article.
func (s ArticleStats) Views(initial int) int {
	return initial + s.ViewsDelta
}

// AuthorStats is the realtime snapshot of an author stream.
type AuthorStats struct {
	Views     int
	Followers int
	Karma     int
}

// AuthorUpdateKind discriminates author stream updates.
type AuthorUpdateKind string

const (
	UpdateView     AuthorUpdateKind = "view"
	UpdateFollower AuthorUpdateKind = "follower"
	UpdateKarma    AuthorUpdateKind = "karma"
)

// AuthorUpdateData carries either an increment or an authoritative total.
type AuthorUpdateData struct {
	Delta *int `json:"delta,omitempty"`
	Total *int `json:"total,omitempty"`
}

// AuthorUpdate is one "update" event of an author stream.
type AuthorUpdate struct {
	Type      AuthorUpdateKind `json:"type"`
	Data      AuthorUpdateData `json:"data"`
	Timestamp any              `json:"timestamp,omitempty"`
}

// Apply folds u into s. Views are incremented by the delta; followers and
// karma are replaced by the total. Unknown kinds leave s unchanged.
func (s AuthorStats) Apply(u AuthorUpdate) AuthorStats {
	switch u.Type {
	case UpdateView:
		if u.Data.Delta != nil {
			s.Views += *u.Data.Delta
		}
	case UpdateFollower:
		if u.Data.Total != nil {
			s.Followers = *u.Data.Total
		}
	case UpdateKarma:
		if u.Data.Total != nil {
			s.Karma = *u.Data.Total
		}
	}
	return s
}

// InteractionRecord is the locally persisted like/bookmark membership.
type InteractionRecord struct {
	Liked      []string `json:"likedArticles"`
	Bookmarked []string `json:"bookmarkedArticles"`
}

// IsLiked reports whether id is in the liked set.
func (r InteractionRecord) IsLiked(id string) bool {
	return contains(r.Liked, id)
}

// IsBookmarked reports whether id is in the bookmarked set.
func (r InteractionRecord) IsBookmarked(id string) bool {
	return contains(r.Bookmarked, id)
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// PendingActionType names a deferred authenticated action.
type PendingActionType string

const PendingFollowAuthor PendingActionType = "follow_author"

// PendingAction is an action attempted while logged out. Timestamp is in
// unix milliseconds.
type PendingAction struct {
	Type      PendingActionType `json:"type"`
	Target    string            `json:"target"`
	Timestamp int64             `json:"timestamp"`
}

// NewPendingAction stamps an action with now.
func NewPendingAction(t PendingActionType, target string, now time.Time) PendingAction {
	return PendingAction{Type: t, Target: target, Timestamp: now.UnixMilli()}
}

// Expired reports whether the action is at least ttl old.
func (a PendingAction) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.UnixMilli(a.Timestamp)) >= ttl
}

// Matches reports whether the action may be replayed for the given type
// and target at now.
func (a PendingAction) Matches(t PendingActionType, target string, now time.Time, ttl time.Duration) bool {
	return a.Type == t && a.Target == target && !a.Expired(now, ttl)
}
