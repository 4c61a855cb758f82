package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"reachout_server/models"

	"github.com/redis/go-redis/v9"
)

// MatchLookup is the slice of the match coordinator the session service
// re-validates pointers against.
type MatchLookup interface {
	GetMatch(ctx context.Context, matchID string) (models.Match, error)
}

// SessionService persists each device's active-conversation pointer and
// reconciles it against the authoritative match state on app start. The
// pointer is a cache; the match is the source of truth.
type SessionService struct {
	client  *redis.Client
	prefix  string
	Matches MatchLookup
}

// NewSessionService connects to Redis and returns the pointer store.
func NewSessionService(redisURL string, matches MatchLookup) (*SessionService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewSessionServiceWithClient(redis.NewClient(opts), matches), nil
}

// NewSessionServiceWithClient builds the store from an existing client.
func NewSessionServiceWithClient(client *redis.Client, matches MatchLookup) *SessionService {
	return &SessionService{
		client:  client,
		prefix:  "pointer:",
		Matches: matches,
	}
}

func (s *SessionService) key(deviceID string) string {
	return s.prefix + deviceID
}

// Ping checks the Redis connection.
func (s *SessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (s *SessionService) Close() error {
	return s.client.Close()
}

// PersistPointer stores the device's active-thread pointer.
func (s *SessionService) PersistPointer(ctx context.Context, deviceID string, pointer models.ActiveThreadPointer) error {
	if deviceID == "" {
		return validationErrorf("persist pointer requires a deviceId")
	}
	if pointer.ThreadID == "" || pointer.RequestID == "" {
		return validationErrorf("pointer requires threadId and requestId")
	}

	data, err := json.Marshal(pointer)
	if err != nil {
		return fmt.Errorf("marshal pointer: %w", err)
	}
	if err := s.client.Set(ctx, s.key(deviceID), data, 0).Err(); err != nil {
		return &TransientError{Op: "pointer persist", Err: err}
	}
	return nil
}

// RecoverOnStart loads the device's pointer and re-validates it against the
// authoritative match. A nil result means no active session: either no
// pointer was stored, or the match is gone or no longer active, in which
// case the stale pointer is cleared before returning.
func (s *SessionService) RecoverOnStart(ctx context.Context, deviceID string) (*models.ActiveThreadPointer, error) {
	data, err := s.client.Get(ctx, s.key(deviceID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &TransientError{Op: "pointer load", Err: err}
	}

	var pointer models.ActiveThreadPointer
	if err := json.Unmarshal([]byte(data), &pointer); err != nil {
		log.Printf("⚠️ Corrupt pointer for device %s, clearing: %v", deviceID, err)
		s.clearQuietly(ctx, deviceID)
		return nil, nil
	}

	// The pointer's thread id equals the match id for human threads.
	match, err := s.Matches.GetMatch(ctx, pointer.ThreadID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			log.Printf("🧹 Pointer for device %s references missing match %s, clearing", deviceID, pointer.ThreadID)
			s.clearQuietly(ctx, deviceID)
			return nil, nil
		}
		return nil, err
	}
	if match.Status != models.MatchStatusActive {
		log.Printf("🧹 Pointer for device %s references %s match %s, clearing", deviceID, match.Status, match.MatchID)
		s.clearQuietly(ctx, deviceID)
		return nil, nil
	}

	return &pointer, nil
}

// ClearPointer removes the device's pointer. Invoked on cancel, complete,
// and logout.
func (s *SessionService) ClearPointer(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, s.key(deviceID)).Err(); err != nil {
		return &TransientError{Op: "pointer clear", Err: err}
	}
	return nil
}

func (s *SessionService) clearQuietly(ctx context.Context, deviceID string) {
	if err := s.ClearPointer(ctx, deviceID); err != nil {
		log.Printf("⚠️ Failed to clear stale pointer for device %s: %v", deviceID, err)
	}
}
