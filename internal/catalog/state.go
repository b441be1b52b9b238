package catalog

import (
	"errors"
	"slices"
	"sync"

	"storefront/internal/domain/model"
)

var (
	ErrInvalidSort     = errors.New("invalid sort")
	ErrInvalidPageSize = errors.New("invalid page size")
)

// State は1セッション分の表示設定。
// 絞り込み・並び順・表示件数を変えると1ページ目に戻る。
type State struct {
	mu         sync.Mutex
	categories []string
	sort       model.SortKey
	pageSize   int
	page       int
	pageSizes  []int
}

// pageSizes の先頭が初期値
func NewState(pageSizes []int) *State {
	if len(pageSizes) == 0 {
		pageSizes = []int{16, 32, 64}
	}
	return &State{
		sort:      model.SortDefault,
		pageSize:  pageSizes[0],
		page:      1,
		pageSizes: slices.Clone(pageSizes),
	}
}

// ToggleCategory は選択/解除を切り替える。
func (s *State) ToggleCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.toggleLocked(category)
	s.page = 1
}

func (s *State) toggleLocked(category string) {
	if i := slices.Index(s.categories, category); i >= 0 {
		s.categories = slices.Delete(s.categories, i, i+1)
	} else {
		s.categories = append(s.categories, category)
	}
}

// SetCategories は選択をまとめて置き換える（重複は落とす）。
func (s *State) SetCategories(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = dedupe(categories)
	s.page = 1
}

func dedupe(categories []string) []string {
	next := make([]string, 0, len(categories))
	for _, c := range categories {
		if !slices.Contains(next, c) {
			next = append(next, c)
		}
	}
	return next
}

func (s *State) SetSort(key model.SortKey) error {
	if key == "" {
		key = model.SortDefault
	}
	if !key.Valid() {
		return ErrInvalidSort
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = key
	s.page = 1
	return nil
}

// SetPageSize は選択肢にある値だけ受け付ける。
func (s *State) SetPageSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.pageSizes, n) {
		return ErrInvalidPageSize
	}
	s.pageSize = n
	s.page = 1
	return nil
}

// Update はまとめて変える表示設定。nil の項目は変えない。
type Update struct {
	Categories     *[]string
	ToggleCategory *string
	Sort           *model.SortKey
	PageSize       *int
}

// Apply は全項目を検証してから1回のロックで反映する。
// 1つでも不正なら何も変えない。
func (s *State) Apply(u Update) error {
	sort := s.sortOrDefault(u.Sort)
	if u.Sort != nil && !sort.Valid() {
		return ErrInvalidSort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.PageSize != nil && !slices.Contains(s.pageSizes, *u.PageSize) {
		return ErrInvalidPageSize
	}

	changed := false
	if u.Sort != nil {
		s.sort = sort
		changed = true
	}
	if u.PageSize != nil {
		s.pageSize = *u.PageSize
		changed = true
	}
	if u.Categories != nil {
		s.categories = dedupe(*u.Categories)
		changed = true
	}
	if u.ToggleCategory != nil {
		s.toggleLocked(*u.ToggleCategory)
		changed = true
	}
	if changed {
		s.page = 1
	}
	return nil
}

func (s *State) sortOrDefault(key *model.SortKey) model.SortKey {
	if key == nil || *key == "" {
		return model.SortDefault
	}
	return *key
}

// GoToPage は範囲外でもエラーにせず丸める。
func (s *State) GoToPage(page int, products []model.Product) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = page
	return s.deriveLocked(products)
}

// View は現在の設定で表示範囲を計算し、丸めたページを保存する。
func (s *State) View(products []model.Product) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriveLocked(products)
}

func (s *State) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paramsLocked()
}

func (s *State) PageSizes() []int {
	return slices.Clone(s.pageSizes)
}

func (s *State) deriveLocked(products []model.Product) View {
	v := Derive(products, s.paramsLocked())
	s.page = v.Page
	return v
}

func (s *State) paramsLocked() Params {
	return Params{
		Categories: slices.Clone(s.categories),
		Sort:       s.sort,
		PageSize:   s.pageSize,
		Page:       s.page,
	}
}
