package middleware

import (
	"fmt"
	"regexp"
)

// RouteMatcher はパスが公開ルートかを返す。
type RouteMatcher func(path string) bool

// サインイン不要のルート。/checkout 以下だけ保護する
func DefaultPublicRoutes() []string {
	return []string{
		`/`,
		`/shop`,
		`/search`,
		`/categories`,
		`/products(/.*)?`,
		`/cart(/.*)?`,
		`/wishlist(/.*)?`,
		`/api/.*`,
		`/healthz`,
	}
}

// セッション不要のルート（死活監視）
func SessionlessRoutes() []string {
	return []string{`/healthz`}
}

// NewRouteMatcher はパターン全体一致で判定する。
func NewRouteMatcher(patterns ...string) (RouteMatcher, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("route pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return func(path string) bool {
		for _, re := range res {
			if re.MatchString(path) {
				return true
			}
		}
		return false
	}, nil
}
