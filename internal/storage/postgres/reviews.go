package storage

import (
	"context"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/review"
	"github.com/google/uuid"
)

func (s *PostgresStorage) CreateReview(ctx context.Context, r *review.Review) error {
	q := `
        INSERT INTO reviews (id, user_id, product_id, ratings, comment, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$6)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.UserID, r.ProductID, r.Ratings, r.Comment, r.CreatedAt)
	return err
}

const reviewColumns = `id, user_id, product_id, ratings, comment, created_at`

func scanReview(row rowScanner) (*review.Review, error) {
	r := &review.Review{}
	if err := row.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Ratings, &r.Comment, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStorage) FindReviewByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id=$1 AND deleted_at IS NULL`
	return scanReview(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStorage) FindReviewByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error) {
	q := `SELECT ` + reviewColumns + `
        FROM reviews WHERE user_id=$1 AND product_id=$2 AND deleted_at IS NULL`
	return scanReview(s.db.QueryRowContext(ctx, q, userID, productID))
}

func (s *PostgresStorage) listReviews(ctx context.Context, q string, args ...any) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) ListReviews(ctx context.Context) ([]review.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE deleted_at IS NULL ORDER BY created_at DESC`
	return s.listReviews(ctx, q)
}

func (s *PostgresStorage) ListReviewsByUser(ctx context.Context, userID uuid.UUID) ([]review.Review, error) {
	q := `SELECT ` + reviewColumns + `
        FROM reviews WHERE user_id=$1 AND deleted_at IS NULL ORDER BY created_at DESC`
	return s.listReviews(ctx, q, userID)
}

func (s *PostgresStorage) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error) {
	q := `SELECT ` + reviewColumns + `
        FROM reviews WHERE product_id=$1 AND deleted_at IS NULL ORDER BY created_at DESC`
	return s.listReviews(ctx, q, productID)
}

func (s *PostgresStorage) UpdateReview(ctx context.Context, r *review.Review) error {
	q := `
        UPDATE reviews SET ratings=$1, comment=$2, updated_at=$3
        WHERE id=$4 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, r.Ratings, r.Comment, time.Now().UTC(), r.ID)
	return err
}

func (s *PostgresStorage) SoftDeleteReview(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE reviews SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, time.Now().UTC(), id)
	return err
}
