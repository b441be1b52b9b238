package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

var (
	// 保存データが壊れている（空として扱う、呼び出し元には返さない）
	ErrPersistenceRead = errors.New("wishlist persistence unreadable")
	// 保存先に届かない。読み込めるまで変更は受け付けない
	ErrStorageUnavailable = errors.New("wishlist storage unavailable")
)

// WishlistStore はお気に入り商品IDの集合。
// 変更のたびに集合全体を key に保存し直す。
type WishlistStore struct {
	mu     sync.Mutex
	kv     repository.KeyValueStore
	key    string
	ids    []string
	loaded bool
	logger *zap.Logger
}

// NewWishlistStore は未読み込みのストアを作る。保存先には触らない。
func NewWishlistStore(kv repository.KeyValueStore, key string, logger *zap.Logger) *WishlistStore {
	return &WishlistStore{kv: kv, key: key, logger: logger}
}

// LoadWishlistStore は作ってすぐ読み込む。
// 保存先に届かなかった場合は未読み込みのまま返し、次の操作で読み直す。
func LoadWishlistStore(ctx context.Context, kv repository.KeyValueStore, key string, logger *zap.Logger) *WishlistStore {
	s := NewWishlistStore(kv, key, logger)
	_ = s.Load(ctx)
	return s
}

// Load は保存済みの集合を読み込む（読み込み済みなら何もしない）。
// 中身が壊れていれば空で始める。保存先に届かなければ ErrStorageUnavailable。
func (s *WishlistStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Loaded は保存済みの集合を読み込めたか
func (s *WishlistStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *WishlistStore) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("wishlist storage unreachable", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	ids, err := decodeIDs(raw, found)
	if err != nil {
		s.logger.Warn("wishlist load failed, starting empty", zap.String("key", s.key), zap.Error(err))
		ids = nil
	}
	s.ids = ids
	s.loaded = true
	return nil
}

func decodeIDs(raw []byte, found bool) ([]string, error) {
	if !found || len(raw) == 0 {
		return nil, nil
	}

	var saved []string
	if err := json.Unmarshal(raw, &saved); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}

	//重複と空文字は落とす
	ids := make([]string, 0, len(saved))
	for _, id := range saved {
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Add は無ければ追加して保存する。既にあれば何もしない。
func (s *WishlistStore) Add(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if slices.Contains(s.ids, productID) {
		return nil
	}
	updated := append(slices.Clone(s.ids), productID)
	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.ids = updated
	return nil
}

// Remove はあれば削除して保存する。
func (s *WishlistStore) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	i := slices.Index(s.ids, productID)
	if i < 0 {
		return nil
	}
	updated := slices.Delete(slices.Clone(s.ids), i, i+1)
	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.ids = updated
	return nil
}

// Toggle は追加/削除を切り替え、切り替え後に含まれるかを返す。
func (s *WishlistStore) Toggle(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return false, err
	}
	var updated []string
	if i := slices.Index(s.ids, productID); i >= 0 {
		updated = slices.Delete(slices.Clone(s.ids), i, i+1)
	} else {
		updated = append(slices.Clone(s.ids), productID)
	}
	if err := s.persist(ctx, updated); err != nil {
		return slices.Contains(s.ids, productID), err
	}
	s.ids = updated
	return slices.Contains(s.ids, productID), nil
}

func (s *WishlistStore) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, productID)
}

// IDs は追加順のコピー
func (s *WishlistStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

func (s *WishlistStore) State() model.WishlistState {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	return model.WishlistState{ProductIDs: ids}
}

// 保存に失敗したらメモリ側も更新しない
func (s *WishlistStore) persist(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}
