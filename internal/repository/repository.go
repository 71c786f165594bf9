package repository

import (
	"context"
	"errors"
	"strings"

	"nectix/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductSort порядок выдачи каталога
type ProductSort string

const (
	SortDefault   ProductSort = ""
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortName      ProductSort = "name"
)

// ProductFilter параметры фильтрации и сортировки каталога
type ProductFilter struct {
	NameSubstring string
	Category      string
	MinPrice      *float64
	MaxPrice      *float64
	Sort          ProductSort
}

// ProductRepository каталог товаров; витрина только читает
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// FavoritesRepository удалённое множество (user_id, product_id)
type FavoritesRepository interface {
	Add(ctx context.Context, userID string, productID int64) error
	Remove(ctx context.Context, userID string, productID int64) error
	List(ctx context.Context, userID string) ([]int64, error)
}

// UserRepository учётные записи для входа по email/паролю
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
