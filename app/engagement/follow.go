package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sussurros/journalterm/app"
	"github.com/sussurros/journalterm/domain"
)

// Follows toggles author follows. Attempts made while logged out are kept
// as a pending action and replayed after login.
type Follows struct {
	authors app.AuthorService
	auth    app.AuthState
	pending *PendingActions
	notify  app.Notifier
	log     *zap.Logger
}

// NewFollows creates a follow controller.
func NewFollows(authors app.AuthorService, auth app.AuthState, pending *PendingActions, notify app.Notifier, opts ...Option) *Follows {
	o := newOptions(opts)
	return &Follows{
		authors: authors,
		auth:    auth,
		pending: pending,
		notify:  notifierOrNop(notify),
		log:     o.log,
	}
}

// ValidUsername reports whether username names a real author.
func ValidUsername(username string) bool {
	u := strings.TrimSpace(username)
	return u != "" && u != "undefined" && u != "null"
}

// Toggle follows or unfollows username depending on following and returns
// the resulting state. When logged out a follow is stored for replay and
// domain.ErrAuthRequired is returned.
func (f *Follows) Toggle(ctx context.Context, username string, following bool) (bool, error) {
	if !ValidUsername(username) {
		f.notify.Notify(domain.Notice{Kind: domain.NoticeError, Text: "Invalid author."})
		return following, domain.ErrInvalidUsername
	}
	username = strings.TrimSpace(username)

	if f.auth == nil || !f.auth.Authenticated() {
		if !following && f.pending != nil {
			if err := f.pending.Save(domain.PendingFollowAuthor, username); err != nil {
				f.log.Warn("storing pending follow", zap.String("author", username), zap.Error(err))
			}
		}
		return following, domain.ErrAuthRequired
	}

	if following {
		if err := f.authors.Unfollow(ctx, username); err != nil {
			f.fail("Could not unfollow @"+username+".", err)
			return true, err
		}
		f.notify.Notify(domain.Notice{Kind: domain.NoticeSuccess, Text: "Unfollowed @" + username + "."})
		return false, nil
	}

	if err := f.authors.Follow(ctx, username); err != nil {
		f.fail("Could not follow @"+username+".", err)
		return false, err
	}
	f.notify.Notify(domain.Notice{Kind: domain.NoticeSuccess, Text: "Now following @" + username + "."})
	return true, nil
}

// ResumePending replays a follow of username deferred while logged out.
// It reports whether a follow was performed.
func (f *Follows) ResumePending(ctx context.Context, username string) (bool, error) {
	if f.pending == nil || !ValidUsername(username) {
		return false, nil
	}
	if f.auth == nil || !f.auth.Authenticated() {
		return false, nil
	}
	username = strings.TrimSpace(username)
	if !f.pending.Claim(domain.PendingFollowAuthor, username) {
		return false, nil
	}

	if err := f.authors.Follow(ctx, username); err != nil {
		f.fail("Could not follow @"+username+".", err)
		return false, fmt.Errorf("replaying follow: %w", err)
	}
	f.notify.Notify(domain.Notice{
		Kind: domain.NoticePendingCompleted,
		Text: "Done! You are now following @" + username + ".",
	})
	return true, nil
}

func (f *Follows) fail(generic string, err error) {
	text := generic
	if msg := ServerMessage(err); msg != "" {
		text = strings.TrimSuffix(generic, ".") + ": " + msg
	} else if errors.Is(err, domain.ErrUnauthorized) {
		text = "Your session expired. Log in again."
	}
	f.log.Warn("follow request failed", zap.Error(err))
	f.notify.Notify(domain.Notice{Kind: domain.NoticeError, Text: text})
}
