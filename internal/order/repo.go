package order

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/storage"
	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/google/uuid"
)

type OrderRepository interface {
	FindOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, o *order.Order) error
	SoftDeleteOrder(ctx context.Context, id uuid.UUID) error
	InTransaction(ctx context.Context, fn func(tx storage.OrderTx) error) error
}
