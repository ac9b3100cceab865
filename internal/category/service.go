package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/category"
	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrTitleRequired    = errors.New("category title is required")
)

type Service struct {
	repo CategoryRepository
}

func NewService(r CategoryRepository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req *category.CreateCategoryRequest) (*category.Category, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	c := &category.Category{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		AddedBy:     callerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	c, err := s.repo.FindCategoryByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListAll(ctx context.Context) ([]category.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *category.UpdateCategoryRequest) (*category.Category, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDeleteCategory(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}
