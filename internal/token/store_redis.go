package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares token views between server instances. Entries expire
// with the room retention window even if eviction is missed.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) tokenKey(token string) string {
	return fmt.Sprintf("role:%s", token)
}

func (s *RedisStore) roomKey(roomID string) string {
	return fmt.Sprintf("room:%s:tokens", roomID)
}

func (s *RedisStore) Put(ctx context.Context, roomID string, views map[string]View) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for tok, v := range views {
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.tokenKey(tok), b, s.ttl)
			pipe.SAdd(ctx, s.roomKey(roomID), tok)
		}
		pipe.Expire(ctx, s.roomKey(roomID), s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (View, bool, error) {
	val, err := s.rdb.Get(ctx, s.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return View{}, false, nil
	}
	if err != nil {
		return View{}, false, err
	}

	var v View
	if err := json.Unmarshal(val, &v); err != nil {
		return View{}, false, err
	}
	return v, true, nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	toks, err := s.rdb.SMembers(ctx, s.roomKey(roomID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(toks)+1)
	for _, tok := range toks {
		keys = append(keys, s.tokenKey(tok))
	}
	keys = append(keys, s.roomKey(roomID))
	return s.rdb.Del(ctx, keys...).Err()
}
