package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Images      []string        `db:"images" json:"images"`
	AddedBy     uuid.UUID       `db:"added_by" json:"added_by"`
	CategoryID  uuid.UUID       `db:"category_id" json:"category_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type CreateProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	CategoryID  uuid.UUID       `json:"category_id"`
}

type UpdateProductRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Images      []string         `json:"images"`
	CategoryID  *uuid.UUID       `json:"category_id"`
}

const (
	SortByCreatedAt = "created_at"
	SortByPrice     = "price"
	SortByTitle     = "title"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPageLimit = 12
)

// ListQuery — фильтры каталога: поиск, категория, цена, наличие, сортировка и страница.
type ListQuery struct {
	Search     string
	CategoryID *uuid.UUID
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	InStock    bool
	SortBy     string
	Order      string
	Page       int
	Limit      int
}

type PageMeta struct {
	TotalItems   int `json:"total_items"`
	ItemCount    int `json:"item_count"`
	ItemsPerPage int `json:"items_per_page"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
}

type Page struct {
	Data []Product `json:"data"`
	Meta PageMeta  `json:"meta"`
}
