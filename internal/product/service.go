package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidProduct   = errors.New("invalid product")
)

type Service struct {
	repo       ProductRepository
	categories CategoryFinder
}

func NewService(repo ProductRepository, categories CategoryFinder) *Service {
	return &Service{repo: repo, categories: categories}
}

func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req *product.CreateProductRequest) (*product.Product, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if req.Price.IsNegative() || req.Stock < 0 {
		return nil, fmt.Errorf("%w: price and stock must be non-negative", ErrInvalidProduct)
	}
	if _, err := s.categories.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, req.CategoryID)
		}
		return nil, err
	}
	p := &product.Product{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		AddedBy:     callerID,
		CategoryID:  req.CategoryID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.repo.FindProductByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListAll отдаёт страницу каталога; дефолты и границы пагинации
// нормализуются здесь, чтобы хранилищу доставался валидный запрос.
func (s *Service) ListAll(ctx context.Context, q *product.ListQuery) (*product.Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = product.DefaultPageLimit
	}
	if q.SortBy == "" {
		q.SortBy = product.SortByCreatedAt
	}
	if q.Order == "" {
		q.Order = product.OrderDesc
	}

	items, total, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	if totalPages == 0 {
		totalPages = 1
	}
	return &product.Page{
		Data: items,
		Meta: product.PageMeta{
			TotalItems:   total,
			ItemCount:    len(items),
			ItemsPerPage: q.Limit,
			TotalPages:   totalPages,
			CurrentPage:  q.Page,
		},
	}, nil
}

func (s *Service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]product.Product, error) {
	if _, err := s.categories.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
		}
		return nil, err
	}
	return s.repo.ListProductsByCategory(ctx, categoryID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *product.UpdateProductRequest) (*product.Product, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidProduct)
		}
		p.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be non-negative", ErrInvalidProduct)
		}
		p.Stock = *req.Stock
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, *req.CategoryID)
			}
			return nil, err
		}
		p.CategoryID = *req.CategoryID
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}
