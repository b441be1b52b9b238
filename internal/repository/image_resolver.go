package repository

// 画像参照 -> 表示用URL。0 は指定なし
type ImageResolver interface {
	URL(ref string, width, height int) (string, error)
}
