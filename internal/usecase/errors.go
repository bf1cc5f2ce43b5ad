package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/validator"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 競合
	ErrConflict = errors.New("conflict")
	//500 DBなど（詳細はログだけ）
	ErrPersistence = errors.New("persistence error")
)

// HTTPError はhandlerでそのままレスポンスにできるエラー
type HTTPError struct {
	Status  int
	Message string
	// 原因（ログ用）
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// errors.Is(err, ErrNotFound) のようにステータスの種類で判定できる
func (e *HTTPError) Is(target error) bool {
	return target != nil && target == sentinelFor(e.Status)
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusInternalServerError:
		return ErrPersistence
	}
	return nil
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

func ValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func NotFoundError() error {
	return NewHTTPError(http.StatusNotFound, "not found")
}

func UnauthorizedError() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func ForbiddenError() error {
	return NewHTTPError(http.StatusForbidden, "forbidden")
}

func ConflictError(message string) error {
	return NewHTTPError(http.StatusConflict, message)
}

// クライアントには固定文言だけ返す
func PersistenceError(cause error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "internal error",
		Err:     cause,
	}
}

var validate = validator.New()

// Validate はタグ検証し、違反をValidationErrorにする
func Validate(in interface{}) error {
	if err := validate.Validate(in); err != nil {
		return ValidationError(err.Error())
	}
	return nil
}

// Tx内から返ったエラーをHTTPErrorにそろえる
func toHTTPError(err error) *HTTPError {
	if he, ok := AsHTTPError(err); ok {
		return he
	}
	return &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Err: err}
}
