package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedPlayerStore puts a redis read-through cache in front of FindOne.
// Writes bump a per-player version and a read only fills the cache if the
// version it saw before reaching the store is still current.
// FindMany always reaches the wrapped store so match snapshots stay fresh.
// Redis faults are logged and bypassed.
type CachedPlayerStore struct {
	PlayerStore
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCachedPlayerStore(inner PlayerStore, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedPlayerStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedPlayerStore{PlayerStore: inner, rdb: rdb, ttl: ttl, log: log}
}

func playerKey(id string) string { return "player:" + id }

// playerVersionKey is bumped by every write so a read that raced a write
// can tell its row is stale.
func playerVersionKey(id string) string { return "player:v:" + id }

func (s *CachedPlayerStore) FindOne(ctx context.Context, id string) (*models.Player, error) {
	raw, err := s.rdb.Get(ctx, playerKey(id)).Bytes()
	switch {
	case err == nil:
		var p models.Player
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return &p, nil
		}
		s.log.Warn("discarding unreadable cached player", zap.String("player_id", id))
	case !errors.Is(err, redis.Nil):
		s.log.Warn("player cache read failed", zap.String("player_id", id), zap.Error(err))
	}

	version, verr := s.version(ctx, s.rdb, id)

	p, err := s.PlayerStore.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		s.log.Warn("player cache version read failed", zap.String("player_id", id), zap.Error(verr))
		return p, nil
	}
	if err := s.fill(ctx, id, version, p); err != nil {
		s.log.Warn("player cache write failed", zap.String("player_id", id), zap.Error(err))
	}
	return p, nil
}

// getter is the part of a redis client or transaction version reads need.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *CachedPlayerStore) version(ctx context.Context, c getter, id string) (int64, error) {
	v, err := c.Get(ctx, playerVersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// fill caches p only while the key's version still equals seen. A write that
// lands in between bumps the version and the stale row is dropped.
func (s *CachedPlayerStore) fill(ctx context.Context, id string, seen int64, p *models.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := s.version(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur != seen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(id), raw, s.ttl)
			return nil
		})
		return err
	}, playerVersionKey(id))
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (s *CachedPlayerStore) Create(ctx context.Context, p *models.Player) error {
	if err := s.PlayerStore.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *CachedPlayerStore) Upsert(ctx context.Context, p *models.Player) error {
	if err := s.PlayerStore.Upsert(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *CachedPlayerStore) BatchUpdate(ctx context.Context, updates []PlayerUpdate) error {
	if err := s.PlayerStore.BatchUpdate(ctx, updates); err != nil {
		return err
	}
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
	}
	s.invalidate(ctx, ids...)
	return nil
}

func (s *CachedPlayerStore) IncrementOne(ctx context.Context, id string, inc PlayerIncrement) (int64, error) {
	n, err := s.PlayerStore.IncrementOne(ctx, id, inc)
	if err == nil && n > 0 {
		s.invalidate(ctx, id)
	}
	return n, err
}

func (s *CachedPlayerStore) invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, playerVersionKey(id))
			pipe.Del(ctx, playerKey(id))
		}
		return nil
	})
	if err != nil {
		s.log.Warn("player cache invalidation failed", zap.Strings("player_ids", ids), zap.Error(err))
	}
}

// Ping checks the redis connection.
func (s *CachedPlayerStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
