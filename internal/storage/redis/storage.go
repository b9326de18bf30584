// Package redis is the Redis-backed storage backend.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/pkg/match"
)

// Storage is a Redis-backed implementation of the storage interface.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance and verifies the
// connection.
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for
// testing).
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection.
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveMatch(ctx context.Context, m *match.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	// Pipeline the save with the index update.
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchKey(m.ID), data, s.cfg.MatchTTL)
	pipe.SAdd(ctx, matchIndexKey(), m.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatch(ctx context.Context, id string) (*match.Match, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var m match.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, matchKey(id))
	pipe.SRem(ctx, matchIndexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListMatchIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, matchIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	// Matches expire individually; drop index entries whose key is
	// gone.
	live := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, matchKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if exists > 0 {
			live = append(live, id)
		} else {
			s.client.SRem(ctx, matchIndexKey(), id)
		}
	}
	return live, nil
}

func (s *Storage) SaveGameRecord(ctx context.Context, matchID string, gameNumber int, record string) error {
	key := recordKey(matchID, gameNumber)
	indexKey := recordIndexKey(matchID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, record, s.cfg.MatchTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.MatchTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGameRecord(ctx context.Context, matchID string, gameNumber int) (string, error) {
	rec, err := s.client.Get(ctx, recordKey(matchID, gameNumber)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return rec, nil
}

func (s *Storage) DeleteGameRecords(ctx context.Context, matchID string) error {
	indexKey := recordIndexKey(matchID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}
