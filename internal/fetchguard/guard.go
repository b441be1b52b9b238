package fetchguard

import (
	"context"
	"sync"
)

// Guard は「最新の取得だけを反映する」ための世代管理。
// ゼロ値で使える。
type Guard struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

type Ticket struct {
	seq uint64
}

// Begin は新しい取得を始める。前の取得の ctx はキャンセルされる。
func (g *Guard) Begin(parent context.Context) (context.Context, Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	g.seq++
	ctx, cancel := context.WithCancel(parent)
	g.cancel = cancel
	return ctx, Ticket{seq: g.seq}
}

// Commit は t がまだ最新なら apply を実行して true を返す。
// 古ければ何もしない。
func (g *Guard) Commit(t Ticket, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t.seq != g.seq {
		return false
	}
	if apply != nil {
		apply()
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	return true
}

// Invalidate は入力が変わったときに呼ぶ。実行中の取得は古い扱いになる。
func (g *Guard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.seq++
}
