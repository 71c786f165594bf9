package repository

import (
	"context"

	"nectix/internal/storage"
)

// LocalFavorites зеркало избранного в локальном слоте favorites_<user_id>;
// используется, когда удалённое хранилище недоступно. Last-writer-wins,
// без разрешения конфликтов.
type LocalFavorites struct {
	store *storage.Store
}

func NewLocalFavorites(store *storage.Store) *LocalFavorites {
	return &LocalFavorites{store: store}
}

var _ FavoritesRepository = (*LocalFavorites)(nil)

func slotKey(userID string) string {
	return "favorites_" + userID
}

func (r *LocalFavorites) Add(ctx context.Context, userID string, productID int64) error {
	ids, _ := r.List(ctx, userID)
	for _, id := range ids {
		if id == productID {
			return nil
		}
	}
	return r.store.Put(slotKey(userID), append(ids, productID))
}

func (r *LocalFavorites) Remove(ctx context.Context, userID string, productID int64) error {
	ids, _ := r.List(ctx, userID)
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != productID {
			out = append(out, id)
		}
	}
	return r.store.Put(slotKey(userID), out)
}

func (r *LocalFavorites) List(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	r.store.Get(slotKey(userID), &ids)
	return ids, nil
}

// Replace перезаписывает слот целиком — зеркалирование оптимистичного
// состояния после неудачной удалённой записи
func (r *LocalFavorites) Replace(userID string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	return r.store.Put(slotKey(userID), ids)
}
