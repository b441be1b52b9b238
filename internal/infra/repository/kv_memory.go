package repository

import (
	"bytes"
	"context"
	"sync"
)

// KVMemoryRepository はプロセス内だけのKV（STORAGE_BACKEND=memory、テスト用）
type KVMemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVMemoryRepository() *KVMemoryRepository {
	return &KVMemoryRepository{data: map[string][]byte{}}
}

func (r *KVMemoryRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (r *KVMemoryRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = bytes.Clone(value)
	return nil
}
