// Package sse consumes the journal's server-sent event streams.
package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"
	backoff "gopkg.in/cenkalti/backoff.v1"

	"github.com/sussurros/journalterm/domain"
)

// Streams implements app.StreamService over r3labs/sse. Each call opens
// one connection and reconnects with exponential backoff until its
// context is done.
type Streams struct {
	baseURL     string
	log         *zap.Logger
	minInterval time.Duration
	maxInterval time.Duration
}

// Option customises Streams.
type Option func(*Streams)

// WithReconnectInterval bounds the reconnect backoff.
func WithReconnectInterval(initial, limit time.Duration) Option {
	return func(s *Streams) {
		s.minInterval = initial
		s.maxInterval = limit
	}
}

// NewStreams creates a stream consumer for the API at baseURL.
func NewStreams(baseURL string, log *zap.Logger, opts ...Option) *Streams {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Streams{
		baseURL:     strings.TrimRight(baseURL, "/"),
		log:         log,
		minInterval: time.Second,
		maxInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ArticleURL returns the stats stream endpoint of an article.
func (s *Streams) ArticleURL(articleID string) string {
	return s.baseURL + "/analytics/stream/" + url.PathEscape(articleID) + "/"
}

// AuthorURL returns the update stream endpoint of an author.
func (s *Streams) AuthorURL(username string) string {
	return s.baseURL + "/analytics/stream/author/" + url.PathEscape(username) + "/"
}

// ArticleStats streams stats payloads of an article. Unnamed events and
// "stats" events carry the payload.
func (s *Streams) ArticleStats(ctx context.Context, articleID string, fn func(domain.ArticleStatsPatch)) error {
	log := s.log.With(zap.String("article", articleID))
	return s.subscribe(ctx, s.ArticleURL(articleID), log, func(ev *sse.Event) {
		switch string(ev.Event) {
		case "", "message", "stats":
		default:
			return
		}
		var p domain.ArticleStatsPatch
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			log.Warn("discarding malformed stats event", zap.Error(err), zap.ByteString("data", ev.Data))
			return
		}
		fn(p)
	})
}

// AuthorUpdates streams "update" events of an author.
func (s *Streams) AuthorUpdates(ctx context.Context, username string, fn func(domain.AuthorUpdate)) error {
	log := s.log.With(zap.String("author", username))
	return s.subscribe(ctx, s.AuthorURL(username), log, func(ev *sse.Event) {
		if string(ev.Event) != "update" {
			return
		}
		var u domain.AuthorUpdate
		if err := json.Unmarshal(ev.Data, &u); err != nil {
			log.Warn("discarding malformed author update", zap.Error(err), zap.ByteString("data", ev.Data))
			return
		}
		fn(u)
	})
}

func (s *Streams) subscribe(ctx context.Context, endpoint string, log *zap.Logger, handle func(*sse.Event)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.minInterval
	b.MaxInterval = s.maxInterval
	b.MaxElapsedTime = 0

	client := sse.NewClient(endpoint)
	client.Connection = &http.Client{}
	client.ReconnectStrategy = backoff.WithContext(b, ctx)
	client.ReconnectNotify = func(err error, next time.Duration) {
		log.Info("stream disconnected, reconnecting", zap.Error(err), zap.Duration("retry_in", next))
	}
	client.OnConnect(func(*sse.Client) {
		log.Debug("stream connected", zap.String("url", endpoint))
	})
	client.OnDisconnect(func(*sse.Client) {
		log.Debug("stream closed", zap.String("url", endpoint))
	})

	for {
		err := client.SubscribeRawWithContext(ctx, func(ev *sse.Event) {
			if ctx.Err() != nil {
				return
			}
			handle(ev)
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		// The library returns nil when the server closes the stream.
		wait := b.NextBackOff()
		log.Info("stream ended by server, reconnecting", zap.Duration("retry_in", wait))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
