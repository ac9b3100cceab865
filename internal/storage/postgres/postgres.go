package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            roles TEXT NOT NULL DEFAULT 'user',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS categories (
            id UUID PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            added_by UUID REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price NUMERIC(10,2) NOT NULL DEFAULT 0,
            stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
            images TEXT NOT NULL DEFAULT '',
            added_by UUID REFERENCES users(id),
            category_id UUID REFERENCES categories(id),
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS shipping (
            id UUID PRIMARY KEY,
            phone TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL,
            city TEXT NOT NULL,
            post_code TEXT NOT NULL,
            state TEXT NOT NULL,
            country TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            order_at TIMESTAMPTZ NOT NULL,
            status TEXT NOT NULL,
            shipped_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            order_by UUID NOT NULL REFERENCES users(id),
            updated_by UUID REFERENCES users(id),
            shipping_id UUID UNIQUE REFERENCES shipping(id),
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS order_products (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            product_id UUID NOT NULL REFERENCES products(id),
            unit_price NUMERIC(10,2) NOT NULL,
            quantity INT NOT NULL CHECK (quantity > 0),
            position INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id),
            product_id UUID NOT NULL REFERENCES products(id),
            ratings INT NOT NULL CHECK (ratings BETWEEN 0 AND 5),
            comment TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            deleted_at TIMESTAMPTZ
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
