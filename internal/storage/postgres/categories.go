package storage

import (
	"context"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/category"
	"github.com/google/uuid"
)

func (s *PostgresStorage) CreateCategory(ctx context.Context, c *category.Category) error {
	q := `
        INSERT INTO categories (id, title, description, added_by, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$5)`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Title, c.Description, c.AddedBy, c.CreatedAt)
	return err
}

func (s *PostgresStorage) FindCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	const q = `
        SELECT id, title, description, added_by, created_at
        FROM categories WHERE id=$1 AND deleted_at IS NULL`
	c := &category.Category{}
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.AddedBy, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStorage) ListCategories(ctx context.Context) ([]category.Category, error) {
	const q = `
        SELECT id, title, description, added_by, created_at
        FROM categories WHERE deleted_at IS NULL ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.AddedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateCategory(ctx context.Context, c *category.Category) error {
	q := `
        UPDATE categories SET title=$1, description=$2, updated_at=$3
        WHERE id=$4 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, c.Title, c.Description, time.Now().UTC(), c.ID)
	return err
}

func (s *PostgresStorage) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE categories SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, time.Now().UTC(), id)
	return err
}
