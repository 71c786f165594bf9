package service

import (
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"

	"nectix/internal/payment"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError несёт полный список проблем формы, а не только первую,
// чтобы интерфейс показал всё сразу
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Category класс ошибки для выбора пользовательского сообщения и статуса
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryDatabase   Category = "database"
	CategoryPayment    Category = "payment"
	CategoryNetwork    Category = "network"
	CategoryUnknown    Category = "unknown"
)

// Classify относит ошибку к одной из категорий. Сетевые ошибки и ошибки
// БД считаются повторяемыми, валидационные — нет.
func Classify(err error) Category {
	var verr *ValidationError
	if errors.As(err, &verr) || errors.Is(err, ErrInvalidInput) {
		return CategoryValidation
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidCredentials) {
		return CategoryAuth
	}
	var backendErr *payment.BackendError
	if errors.As(err, &backendErr) {
		return CategoryPayment
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return CategoryDatabase
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryNetwork
	}
	return CategoryUnknown
}
