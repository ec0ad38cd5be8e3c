package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerでそのままステータスとbodyにする
type HTTPError struct {
	Status  int
	Message string
	// 入力エラーのときだけ。field -> message
	Fields map[string]string
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 原因つき（ログ用）
func WrapHTTPError(status int, message string, err error) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// 400。{"error":"validation error","fields":{field: cause}}
func NewValidationError(field string, cause error) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Fields:  map[string]string{field: cause.Error()},
		Err:     cause,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func dbError(err error) error {
	return WrapHTTPError(http.StatusInternalServerError, "db error", err)
}

var (
	errNotFound     = NewHTTPError(http.StatusNotFound, "not found")
	errUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	errForbidden    = NewHTTPError(http.StatusForbidden, "forbidden")
)

// 注文確定の入力エラー
var (
	ErrCartNotFound  = errors.New("no cart with this identifier")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrInvalidCartID = errors.New("must be a valid UUID")
)
