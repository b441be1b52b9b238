package repository

import "context"

// 永続キーバリューの約束。
// ウィッシュリストは固定キーに丸ごと保存する。
type KeyValueStore interface {
	//無ければ found=false
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
