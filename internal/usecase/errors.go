package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 安定した機械可読のエラー種別。レスポンスのcodeフィールドにそのまま出る。
const (
	KindProductNotFound       = "PRODUCT_NOT_FOUND"
	KindOrderNotFound         = "ORDER_NOT_FOUND"
	KindProductUnavailable    = "PRODUCT_UNAVAILABLE"
	KindInsufficientStock     = "INSUFFICIENT_STOCK"
	KindInvalidAction         = "INVALID_ACTION"
	KindInvalidRating         = "INVALID_RATING"
	KindOrderNotEligible      = "ORDER_NOT_ELIGIBLE"
	KindDuplicateReview       = "DUPLICATE_REVIEW"
	KindAuthorizationDenied   = "AUTHORIZATION_DENIED"
	KindUnauthorized          = "UNAUTHORIZED"
	KindInvalidRequest        = "INVALID_REQUEST"
	KindDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	KindInternal              = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Kind    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

func NewHTTPError(status int, kind string, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kind,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// DB等の依存先障害。操作全体の失敗として503で返す。
func errDependency() error {
	return NewHTTPError(http.StatusServiceUnavailable, KindDependencyUnavailable, "dependency unavailable")
}
