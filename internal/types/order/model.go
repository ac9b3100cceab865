package order

import (
	"encoding/json"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Shipping создаётся вместе с заказом и больше не меняется.
type Shipping struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Phone     string    `db:"phone" json:"phone"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	PostCode  string    `db:"post_code" json:"post_code"`
	State     string    `db:"state" json:"state"`
	Country   string    `db:"country" json:"country"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Line хранит цену товара на момент заказа, а не текущую.
type Line struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OrderID   uuid.UUID        `db:"order_id" json:"-"`
	ProductID uuid.UUID        `db:"product_id" json:"product_id"`
	UnitPrice decimal.Decimal  `db:"unit_price" json:"unit_price"`
	Quantity  int              `db:"quantity" json:"quantity"`
	Product   *product.Product `db:"-" json:"product,omitempty"`
}

func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OrderAt     time.Time  `db:"order_at" json:"order_at"`
	Status      Status     `db:"status" json:"status"`
	ShippedAt   *time.Time `db:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	OrderBy     uuid.UUID  `db:"order_by" json:"order_by"`
	UpdatedBy   *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	Shipping    *Shipping  `db:"-" json:"shipping"`
	Lines       []Line     `db:"-" json:"products"`
}

// Total считается по строкам при каждом чтении и нигде не хранится.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Subtotal())
	}
	return total
}

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		Total decimal.Decimal `json:"total"`
	}{alias(o), o.Total()})
}

type OrderedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type CreateOrderRequest struct {
	Shipping Shipping      `json:"shipping"`
	Items    []OrderedItem `json:"ordered_products"`
}
