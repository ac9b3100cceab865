package category

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/types/category"
	"github.com/google/uuid"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *category.Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
}
