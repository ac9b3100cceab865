package review

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/antonminaichev/gophershop/internal/types/review"
	"github.com/google/uuid"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, r *review.Review) error
	FindReviewByID(ctx context.Context, id uuid.UUID) (*review.Review, error)
	FindReviewByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*review.Review, error)
	ListReviews(ctx context.Context) ([]review.Review, error)
	ListReviewsByUser(ctx context.Context, userID uuid.UUID) ([]review.Review, error)
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error)
	UpdateReview(ctx context.Context, r *review.Review) error
	SoftDeleteReview(ctx context.Context, id uuid.UUID) error
}

type ProductFinder interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}
