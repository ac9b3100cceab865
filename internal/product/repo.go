package product

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/types/category"
	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *product.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ListProducts(ctx context.Context, q *product.ListQuery) ([]product.Product, int, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]product.Product, error)
	UpdateProduct(ctx context.Context, p *product.Product) error
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
}

type CategoryFinder interface {
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
}
