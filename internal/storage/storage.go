package storage

import (
	"context"
	"errors"

	"github.com/antonminaichev/gophershop/internal/types/category"
	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/antonminaichev/gophershop/internal/types/review"
	"github.com/antonminaichev/gophershop/internal/types/user"
	"github.com/google/uuid"
)

// ErrAlreadyExists возвращается при нарушении уникальности (email, отзыв).
// Отсутствие записи репозитории сигналят через sql.ErrNoRows.
var ErrAlreadyExists = errors.New("already exists")

// UserRepository отвечает за операции над пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// CategoryRepository отвечает за категории каталога.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *category.Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error
}

// ProductRepository отвечает за товары.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *product.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ListProducts(ctx context.Context, q *product.ListQuery) ([]product.Product, int, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]product.Product, error)
	UpdateProduct(ctx context.Context, p *product.Product) error
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) error
}

// OrderTx — набор операций, доступных внутри одной транзакции резервирования.
// LockProduct берёт эксклюзивную блокировку строки (SELECT ... FOR UPDATE)
// и держит её до конца транзакции; удалённые товары возвращаются как nil.
type OrderTx interface {
	LockProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error
	CreateShipping(ctx context.Context, sh *order.Shipping) error
	CreateOrder(ctx context.Context, o *order.Order) error
	CreateOrderLines(ctx context.Context, lines []order.Line) error
	UpdateOrderStatus(ctx context.Context, o *order.Order) error
}

// OrderRepository отвечает за заказы.
type OrderRepository interface {
	FindOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, o *order.Order) error
	SoftDeleteOrder(ctx context.Context, id uuid.UUID) error
	InTransaction(ctx context.Context, fn func(tx OrderTx) error) error
}

// ReviewRepository отвечает за отзывы.
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

// Storage объединяет все репозитории.
type Storage interface {
	UserRepository
	CategoryRepository
	ProductRepository
	OrderRepository
	ReviewRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
