package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/store"

	"go.uber.org/zap"
)

const wishlistKeyPrefix = "wishlist:"

// ウィッシュリストの保存キー（セッションごとに固定）
func WishlistKey(sessionID string) string {
	return wishlistKeyPrefix + sessionID
}

// Registry はセッションを作って保持する。グローバル変数は使わない。
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	kv        repository.KeyValueStore
	placer    repository.OrderPlacer
	pageSizes []int
	now       func() time.Time
	logger    *zap.Logger
}

func NewRegistry(kv repository.KeyValueStore, placer repository.OrderPlacer, pageSizes []int, logger *zap.Logger) *Registry {
	return &Registry{
		sessions:  map[string]*Session{},
		kv:        kv,
		placer:    placer,
		pageSizes: pageSizes,
		now:       time.Now,
		logger:    logger,
	}
}

// 初回読み込みの上限
const wishlistLoadTimeout = 5 * time.Second

// Get はセッションを返す。初回はストアを作り、ウィッシュリストを1回だけ読み込む。
// 読み込みはロックの外で行い、他のセッションを待たせない。
func (r *Registry) Get(ctx context.Context, id string) *Session {
	s := r.provision(id)

	s.loadOnce.Do(func() {
		//リクエストが切れても読み込みは最後まで行う
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wishlistLoadTimeout)
		defer cancel()
		if err := s.Wishlist.Load(lctx); err != nil {
			r.logger.Warn("wishlist not loaded, retrying on next change", zap.String("session_id", id), zap.Error(err))
		}
	})
	return s
}

func (r *Registry) provision(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.touch(r.now())
		return s
	}

	cart := store.NewCartStore()
	s := &Session{
		ID:       id,
		Cart:     cart,
		Wishlist: store.NewWishlistStore(r.kv, WishlistKey(id), r.logger),
		Checkout: checkout.NewOrchestrator(cart, r.placer, r.logger.With(zap.String("session_id", id))),
		Catalog:  catalog.NewState(r.pageSizes),
	}
	s.touch(r.now())
	r.sessions[id] = s
	return s
}

// Sweep は idle より長く使われていないセッションを破棄する。
// ウィッシュリストは保存済みなので次回アクセスで読み直される。
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		status, _ := s.Checkout.Status()
		if status == model.CheckoutStatusSubmitting {
			continue
		}
		if s.idleSince(now) > idle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper は ctx が終わるまで定期的に Sweep する。
func (r *Registry) RunSweeper(ctx context.Context, every, idle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Debug("idle sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
