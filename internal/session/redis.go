package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsrag/internal/model"
)

// RedisStore persists sessions in redis. Every write refreshes the TTL on
// both the record key and the message cache list so redis' own eviction stays
// aligned with the logical TTL.
type RedisStore struct {
	client *redisv9.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(client *redisv9.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (s *RedisStore) Create(ctx context.Context, id string) error {
	now := time.Now().UTC()
	record := &model.Session{
		SessionID:    id,
		CreatedAt:    now,
		LastActivity: now,
		Messages:     []model.Message{},
	}
	if err := s.writeRecord(ctx, record); err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, sessionSetKey, id).Err(); err != nil {
		return fmt.Errorf("add session to set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, id, role, content string) error {
	record, err := s.readRecord(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		if err := s.Create(ctx, id); err != nil {
			return err
		}
		if record, err = s.readRecord(ctx, id); err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("session %s vanished after create", id)
		}
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	record.Messages = append(record.Messages, msg)
	record.LastActivity = msg.Timestamp

	// The canonical record goes first; only then the cache list, so a
	// failure between the two leaves the record as the source of truth
	// rather than a cache entry with no record behind it.
	if err := s.writeRecord(ctx, record); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}
	if err := s.client.LPush(ctx, messagesKey(id), payload).Err(); err != nil {
		return fmt.Errorf("push message cache failed: %w", err)
	}
	if err := s.client.Expire(ctx, messagesKey(id), s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh message cache ttl failed: %w", err)
	}
	return nil
}

func (s *RedisStore) GetHistory(ctx context.Context, id string) (*model.Session, error) {
	record, err := s.readRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	cached, err := s.client.LRange(ctx, messagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read message cache failed: %w", err)
	}

	if record == nil && len(cached) == 0 {
		return nil, ErrSessionNotFound
	}
	if record == nil {
		// Record expired or lost while the cache survived; rebuild what we
		// can so the history stays readable.
		record = &model.Session{SessionID: id}
	}

	if len(cached) > 0 {
		// The cache is newest-first; the canonical message order is
		// insertion order.
		messages := make([]model.Message, 0, len(cached))
		for i := len(cached) - 1; i >= 0; i-- {
			var msg model.Message
			if err := json.Unmarshal([]byte(cached[i]), &msg); err != nil {
				return nil, fmt.Errorf("unmarshal cached message failed: %w", err)
			}
			messages = append(messages, msg)
		}
		record.Messages = messages
	}
	return record, nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	record, err := s.readRecord(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrSessionNotFound
	}

	record.Messages = []model.Message{}
	record.LastActivity = time.Now().UTC()
	if err := s.writeRecord(ctx, record); err != nil {
		return err
	}
	if err := s.client.Del(ctx, messagesKey(id)).Err(); err != nil {
		return fmt.Errorf("delete message cache failed: %w", err)
	}
	return nil
}

func (s *RedisStore) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	ids, err := s.client.SMembers(ctx, sessionSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list session ids failed: %w", err)
	}

	summaries := make([]model.SessionSummary, 0, len(ids))
	for _, id := range ids {
		record, err := s.readRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		if record == nil || len(record.Messages) == 0 {
			continue
		}
		summaries = append(summaries, model.SessionSummary{
			SessionID:    record.SessionID,
			CreatedAt:    record.CreatedAt,
			LastActivity: record.LastActivity,
			MessageCount: len(record.Messages),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries, nil
}

func (s *RedisStore) CleanupExpired(ctx context.Context) (int, error) {
	ids, err := s.client.SMembers(ctx, sessionSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list session ids failed: %w", err)
	}

	removed := 0
	now := time.Now().UTC()
	for _, id := range ids {
		record, err := s.readRecord(ctx, id)
		if err != nil {
			return removed, err
		}
		if record == nil {
			// Redis already evicted the record; drop the dangling set entry.
			if err := s.client.SRem(ctx, sessionSetKey, id).Err(); err != nil {
				return removed, fmt.Errorf("remove stale session id failed: %w", err)
			}
			continue
		}
		if now.Sub(record.LastActivity) <= s.ttl {
			continue
		}
		if err := s.delete(ctx, id); err != nil {
			return removed, err
		}
		removed++
		s.logger.Info("cleaned up expired session", zap.String("session_id", id))
	}
	return removed, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), messagesKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session keys failed: %w", err)
	}
	if err := s.client.SRem(ctx, sessionSetKey, id).Err(); err != nil {
		return fmt.Errorf("remove session id failed: %w", err)
	}
	return nil
}

func (s *RedisStore) readRecord(ctx context.Context, id string) (*model.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}
	var record model.Session
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) writeRecord(ctx context.Context, record *model.Session) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(record.SessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

const sessionSetKey = "sessions"

func sessionKey(id string) string  { return "session:" + id }
func messagesKey(id string) string { return "messages:" + id }
