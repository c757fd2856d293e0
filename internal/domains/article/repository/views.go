package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/cache"
)

// =====================================================
// VIEW STORE
// =====================================================
// Lượt xem: best-effort, tối đa 1 lần / session / bài.
// Request path chỉ ghi vào Redis, worker (views:flush) gộp xuống Postgres.

type ViewStore interface {
	// MarkSeen returns true the first time a session views the article within ttl
	MarkSeen(ctx context.Context, articleID uuid.UUID, sessionID string, ttl time.Duration) (bool, error)

	// AddPending buffers a view increment for the next flush
	AddPending(ctx context.Context, articleID uuid.UUID, delta int64) error

	// Drain snapshots the buffered increments. Entries stay in the snapshot
	// until Ack, so a failed flush is picked up again by the next run.
	Drain(ctx context.Context) (map[uuid.UUID]int64, error)

	// Ack removes one article from the snapshot after it has been persisted
	Ack(ctx context.Context, articleID uuid.UUID) error
}

// =====================================================
// REDIS IMPLEMENTATION
// =====================================================

type redisViewStore struct {
	client *redis.Client
}

func NewRedisViewStore(client *redis.Client) ViewStore {
	return &redisViewStore{client: client}
}

func (s *redisViewStore) MarkSeen(ctx context.Context, articleID uuid.UUID, sessionID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(shared.CacheKeyViewSeen, articleID, sessionID)
	ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark view seen: %w", err)
	}
	return ok, nil
}

func (s *redisViewStore) AddPending(ctx context.Context, articleID uuid.UUID, delta int64) error {
	if err := s.client.HIncrBy(ctx, shared.CacheKeyViewPending, articleID.String(), delta).Err(); err != nil {
		return fmt.Errorf("buffer view: %w", err)
	}
	return nil
}

func (s *redisViewStore) Drain(ctx context.Context) (map[uuid.UUID]int64, error) {
	// Snapshot cũ chưa ack hết -> xử lý tiếp snapshot đó trước
	n, err := s.client.Exists(ctx, shared.CacheKeyViewFlushing).Result()
	if err != nil {
		return nil, fmt.Errorf("check flushing snapshot: %w", err)
	}
	if n == 0 {
		// RENAME lỗi khi key không tồn tại, nên check EXISTS trước
		pending, err := s.client.Exists(ctx, shared.CacheKeyViewPending).Result()
		if err != nil {
			return nil, fmt.Errorf("check pending views: %w", err)
		}
		if pending == 0 {
			return map[uuid.UUID]int64{}, nil
		}
		// RENAMENX: không ghi đè snapshot nếu có Drain khác chạy song song
		if err := s.client.RenameNX(ctx, shared.CacheKeyViewPending, shared.CacheKeyViewFlushing).Err(); err != nil {
			return nil, fmt.Errorf("snapshot pending views: %w", err)
		}
	}

	raw, err := s.client.HGetAll(ctx, shared.CacheKeyViewFlushing).Result()
	if err != nil {
		return nil, fmt.Errorf("read views snapshot: %w", err)
	}

	out := make(map[uuid.UUID]int64, len(raw))
	for k, v := range raw {
		id, errID := uuid.Parse(k)
		delta, errN := strconv.ParseInt(v, 10, 64)
		if errID != nil || errN != nil {
			log.Warn().Str("field", k).Str("value", v).Msg("dropping malformed view counter")
			if err := s.client.HDel(ctx, shared.CacheKeyViewFlushing, k).Err(); err != nil {
				log.Warn().Err(err).Str("field", k).Msg("failed to drop malformed view counter")
			}
			continue
		}
		out[id] = delta
	}
	return out, nil
}

func (s *redisViewStore) Ack(ctx context.Context, articleID uuid.UUID) error {
	return s.client.HDel(ctx, shared.CacheKeyViewFlushing, articleID.String()).Err()
}

// =====================================================
// IN-MEMORY IMPLEMENTATION
// =====================================================

type memoryViewStore struct {
	seen cache.Cache

	mu       sync.Mutex
	pending  map[uuid.UUID]int64
	flushing map[uuid.UUID]int64
}

// NewMemoryViewStore dedupes sessions through the given cache (SetNX)
func NewMemoryViewStore(seen cache.Cache) ViewStore {
	return &memoryViewStore{
		seen:     seen,
		pending:  make(map[uuid.UUID]int64),
		flushing: make(map[uuid.UUID]int64),
	}
}

func (s *memoryViewStore) MarkSeen(ctx context.Context, articleID uuid.UUID, sessionID string, ttl time.Duration) (bool, error) {
	return s.seen.SetNX(ctx, fmt.Sprintf(shared.CacheKeyViewSeen, articleID, sessionID), 1, ttl)
}

func (s *memoryViewStore) AddPending(ctx context.Context, articleID uuid.UUID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[articleID] += delta
	return nil
}

func (s *memoryViewStore) Drain(ctx context.Context) (map[uuid.UUID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.flushing) == 0 {
		s.flushing, s.pending = s.pending, make(map[uuid.UUID]int64)
	}
	out := make(map[uuid.UUID]int64, len(s.flushing))
	for id, n := range s.flushing {
		out[id] = n
	}
	return out, nil
}

func (s *memoryViewStore) Ack(ctx context.Context, articleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flushing, articleID)
	return nil
}
