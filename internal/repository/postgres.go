package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PgFavorites избранное в реляционной таблице favorites(user_id, product_id)
type PgFavorites struct {
	db *sql.DB
}

func NewPgFavorites(db *sql.DB) *PgFavorites {
	return &PgFavorites{db: db}
}

var _ FavoritesRepository = (*PgFavorites)(nil)

func (r *PgFavorites) Add(ctx context.Context, userID string, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (r *PgFavorites) Remove(ctx context.Context, userID string, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (r *PgFavorites) List(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY product_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsUndefinedTable распознаёт класс ошибок "relation does not exist"
// (postgres 42P01) — сигнал переключиться на локальный fallback
func IsUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
