package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type KVRedisRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewKVRedisRepository(rdb *redis.Client, prefix string) *KVRedisRepository {
	return &KVRedisRepository{rdb: rdb, prefix: prefix}
}

func (r *KVRedisRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// 期限なしで保存
func (r *KVRedisRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}
