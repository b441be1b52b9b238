package usecase

import (
	"errors"
	"fmt"
)

// コンテンツ取得の失敗（一覧はエラー表示付きの空、詳細は502）
var ErrFetchFailure = errors.New("fetch failure")

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
