package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open открывает соединение с postgres и проверяет его ping-ом
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return conn, nil
}
