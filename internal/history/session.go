// Package history keeps the recent scans of a client session in Redis.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dealscan/internal/model"
)

const (
	sessionTTL = 24 * time.Hour
	scanLimit  = 20
	keyPrefix  = "dealscan:history:"
)

type Entry struct {
	Barcode     string            `json:"barcode"`
	ProductName string            `json:"product_name"`
	Verdict     model.VerdictKind `json:"verdict"`
	ScannedAt   time.Time         `json:"scanned_at"`
}

type Recorder interface {
	Append(ctx context.Context, sessionID string, e Entry) error
	List(ctx context.Context, sessionID string) ([]Entry, error)
}

// SessionStore holds at most scanLimit entries per session, oldest first.
type SessionStore struct {
	Client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{Client: client}
}

// Open parses a redis:// URL. An empty URL yields the no-op recorder.
func Open(redisURL string) (Recorder, func() error, error) {
	if redisURL == "" {
		return Noop{}, func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return NewSessionStore(client), client.Close, nil
}

func (s *SessionStore) List(ctx context.Context, sessionID string) ([]Entry, error) {
	vals, err := s.Client.LRange(ctx, key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", sessionID, err)
	}

	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		// entradas corrompidas são ignoradas
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *SessionStore) Append(ctx context.Context, sessionID string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	k := key(sessionID)
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, b)
		pipe.LTrim(ctx, k, -scanLimit, -1)
		pipe.Expire(ctx, k, sessionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history %s: %w", sessionID, err)
	}
	return nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) Append(context.Context, string, Entry) error { return nil }

func (Noop) List(context.Context, string) ([]Entry, error) { return []Entry{}, nil }
