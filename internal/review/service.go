package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/review"
	"github.com/google/uuid"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	ErrInvalidReview   = errors.New("invalid review")
)

type Service struct {
	repo     ReviewRepository
	products ProductFinder
}

func NewService(repo ReviewRepository, products ProductFinder) *Service {
	return &Service{repo: repo, products: products}
}

func validateRatings(ratings int) error {
	if ratings < 0 || ratings > 5 {
		return fmt.Errorf("%w: ratings must be between 0 and 5", ErrInvalidReview)
	}
	return nil
}

// Create допускает не больше одного отзыва на товар от одного пользователя.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req *review.CreateReviewRequest) (*review.Review, error) {
	if err := validateRatings(req.Ratings); err != nil {
		return nil, err
	}
	if req.Comment == "" {
		return nil, fmt.Errorf("%w: comment is required", ErrInvalidReview)
	}
	if _, err := s.products.FindProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, req.ProductID)
		}
		return nil, err
	}

	_, err := s.repo.FindReviewByUserAndProduct(ctx, callerID, req.ProductID)
	if err == nil {
		return nil, ErrAlreadyReviewed
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rv := &review.Review{
		ID:        uuid.New(),
		UserID:    callerID,
		ProductID: req.ProductID,
		Ratings:   req.Ratings,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	rv, err := s.repo.FindReviewByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReviewNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListAll(ctx context.Context) ([]review.Review, error) {
	return s.repo.ListReviews(ctx)
}

func (s *Service) ListMine(ctx context.Context, callerID uuid.UUID) ([]review.Review, error) {
	return s.repo.ListReviewsByUser(ctx, callerID)
}

func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error) {
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	return s.repo.ListReviewsByProduct(ctx, productID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *review.UpdateReviewRequest) (*review.Review, error) {
	rv, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Ratings != nil {
		if err := validateRatings(*req.Ratings); err != nil {
			return nil, err
		}
		rv.Ratings = *req.Ratings
	}
	if req.Comment != nil {
		rv.Comment = *req.Comment
	}
	if err := s.repo.UpdateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	rv, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDeleteReview(ctx, id); err != nil {
		return nil, err
	}
	return rv, nil
}
