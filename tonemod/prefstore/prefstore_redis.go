package prefstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisLikeKey = "prefs/like"
var redisDislikeKey = "prefs/dislike"
var redisSavedAtKey = "prefs/saved_at"

// RedisPrefStore keeps the same in-memory snapshot and dirty-flag discipline
// as the file backend, and flushes via a single transactional pipeline.
type RedisPrefStore struct {
	Client *redis.Client
	logger *slog.Logger

	mu      sync.RWMutex
	like    map[string]bool
	dislike map[string]bool
	dirty   bool
}

func NewRedisPrefStore(redisURL string, logger *slog.Logger) (*RedisPrefStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, err
	}
	return &RedisPrefStore{
		Client:  rdb,
		logger:  logger.With("system", "prefstore"),
		like:    make(map[string]bool),
		dislike: make(map[string]bool),
	}, nil
}

func (s *RedisPrefStore) Load(ctx context.Context) error {
	like, err := s.Client.SMembers(ctx, redisLikeKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading preference state: %w", err)
	}
	dislike, err := s.Client.SMembers(ctx, redisDislikeKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading preference state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.like = make(map[string]bool, len(like))
	for _, tok := range like {
		s.like[tok] = true
	}
	s.dislike = make(map[string]bool, len(dislike))
	for _, tok := range dislike {
		s.dislike[tok] = true
	}
	if len(like) == 0 && len(dislike) == 0 {
		s.dirty = true
	}
	s.logger.Info("loaded preference state", "like", len(s.like), "dislike", len(s.dislike))
	return nil
}

func (s *RedisPrefStore) addTokens(set map[string]bool, tokens []string) {
	for _, tok := range normalizeTokens(tokens) {
		if !set[tok] {
			set[tok] = true
			s.dirty = true
		}
	}
}

func (s *RedisPrefStore) AddLike(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTokens(s.like, tokens)
	return nil
}

func (s *RedisPrefStore) AddDislike(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTokens(s.dislike, tokens)
	return nil
}

func (s *RedisPrefStore) Export(ctx context.Context) ([]string, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.like), sortedKeys(s.dislike), nil
}

func (s *RedisPrefStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.like = make(map[string]bool)
	s.dislike = make(map[string]bool)
	s.dirty = false
	s.mu.Unlock()

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisLikeKey, redisDislikeKey)
		pipe.Set(ctx, redisSavedAtKey, time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("resetting preference state: %w", err)
	}
	return nil
}

func (s *RedisPrefStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	like := sortedKeys(s.like)
	dislike := sortedKeys(s.dislike)
	s.dirty = false
	s.mu.Unlock()

	// sets are append-only between resets, so SAdd of the full snapshot in
	// one transaction is a complete write
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(like) > 0 {
			pipe.SAdd(ctx, redisLikeKey, toAnySlice(like)...)
		}
		if len(dislike) > 0 {
			pipe.SAdd(ctx, redisDislikeKey, toAnySlice(dislike)...)
		}
		pipe.Set(ctx, redisSavedAtKey, time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("flushing preference state: %w", err)
	}
	s.logger.Debug("flushed preference state", "like", len(like), "dislike", len(dislike))
	return nil
}

func toAnySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
