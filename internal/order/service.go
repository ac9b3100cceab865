package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/antonminaichev/gophershop/internal/storage"
	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest  = errors.New("invalid order request")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
)

// InsufficientStockError сообщает, какой товар не удалось зарезервировать
// и сколько его осталось на момент блокировки строки.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s has only %d available", e.ProductID, e.Available)
}

type TransitionError struct {
	From order.Status
	To   order.Status
}

func (e *TransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("order is %s and cannot be updated", e.From)
	}
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

var transitions = map[order.Status][]order.Status{
	order.StatusPending:    {order.StatusProcessing, order.StatusCancelled},
	order.StatusProcessing: {order.StatusShipped, order.StatusCancelled},
	order.StatusShipped:    {order.StatusDelivered},
	order.StatusDelivered:  {},
	order.StatusCancelled:  {},
}

type Service struct {
	repo OrderRepository
}

func NewService(r OrderRepository) *Service {
	return &Service{repo: r}
}

func validateItems(items []order.OrderedItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: ordered products are required", ErrInvalidRequest)
	}
	seen := make(map[uuid.UUID]bool, len(items))
	var dups []string
	for _, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidRequest, it.ProductID)
		}
		// цена покупателя носит справочный характер, но мусор не пропускаем
		if !it.UnitPrice.IsPositive() {
			return fmt.Errorf("%w: unit price must be positive for product %s", ErrInvalidRequest, it.ProductID)
		}
		if it.UnitPrice.Exponent() < -2 {
			return fmt.Errorf("%w: unit price must have at most 2 decimal places for product %s", ErrInvalidRequest, it.ProductID)
		}
		if seen[it.ProductID] {
			dups = append(dups, it.ProductID.String())
		}
		seen[it.ProductID] = true
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: duplicate product ids in order: %s", ErrInvalidRequest, strings.Join(dups, ", "))
	}
	return nil
}

// PlaceOrder резервирует товары и создаёт заказ одной транзакцией.
// Блокировки берутся по возрастанию id товара, чтобы два конкурентных
// заказа с пересекающимися товарами не зашли в дедлок; списывается всегда
// актуальная каталожная цена, а не присланная покупателем.
func (s *Service) PlaceOrder(ctx context.Context, callerID uuid.UUID, req *order.CreateOrderRequest) (*order.Order, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sh := req.Shipping
	sh.ID = uuid.New()
	sh.CreatedAt = now

	o := &order.Order{
		ID:       uuid.New(),
		OrderAt:  now,
		Status:   order.StatusProcessing,
		OrderBy:  callerID,
		Shipping: &sh,
	}

	sorted := make([]order.OrderedItem, len(req.Items))
	copy(sorted, req.Items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	err := s.repo.InTransaction(ctx, func(tx storage.OrderTx) error {
		if err := tx.CreateShipping(ctx, o.Shipping); err != nil {
			return fmt.Errorf("create shipping: %w", err)
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		lineByProduct := make(map[uuid.UUID]order.Line, len(sorted))
		for _, it := range sorted {
			p, err := tx.LockProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("lock product %s: %w", it.ProductID, err)
			}
			if p == nil {
				return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
			}
			if p.Stock < it.Quantity {
				return &InsufficientStockError{ProductID: p.ID, Available: p.Stock}
			}
			lineByProduct[p.ID] = order.Line{
				ID:        uuid.New(),
				OrderID:   o.ID,
				ProductID: p.ID,
				UnitPrice: p.Price,
				Quantity:  it.Quantity,
			}
			if err := tx.UpdateProductStock(ctx, p.ID, p.Stock-it.Quantity); err != nil {
				return fmt.Errorf("update stock %s: %w", p.ID, err)
			}
		}

		// строки сохраняются в порядке, присланном покупателем
		lines := make([]order.Line, 0, len(req.Items))
		for _, it := range req.Items {
			lines = append(lines, lineByProduct[it.ProductID])
		}
		o.Lines = lines
		return tx.CreateOrderLines(ctx, lines)
	})
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, o.ID)
}

// Transition переводит заказ в новый статус по таблице допустимых переходов.
// Повторный запрос текущего статуса — no-op. Допустимый переход в cancelled
// идёт через Cancel, чтобы вернуть зарезервированный товар на склад.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next order.Status, callerID uuid.UUID) (*order.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, next)
	}
	o, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &TransitionError{From: o.Status, To: next}
	}
	if o.Status == next {
		return o, nil
	}

	allowed := false
	for _, t := range transitions[o.Status] {
		if t == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &TransitionError{From: o.Status, To: next}
	}
	if next == order.StatusCancelled {
		return s.Cancel(ctx, id, callerID)
	}

	now := time.Now().UTC()
	switch next {
	case order.StatusShipped:
		o.ShippedAt = &now
	case order.StatusDelivered:
		o.DeliveredAt = &now
	}
	o.Status = next
	o.UpdatedBy = &callerID

	if err := s.repo.UpdateOrderStatus(ctx, o); err != nil {
		return nil, err
	}
	return s.findOne(ctx, id)
}

// Cancel — обратная операция к резервированию: той же дисциплиной блокировок
// возвращает количество каждой строки на склад и помечает заказ отменённым.
// Товар, уже удалённый из каталога, пропускается — заказ всё равно отменяется.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, callerID uuid.UUID) (*order.Order, error) {
	o, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &TransitionError{From: o.Status, To: order.StatusCancelled}
	}

	lines := make([]order.Line, len(o.Lines))
	copy(lines, o.Lines)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})

	err = s.repo.InTransaction(ctx, func(tx storage.OrderTx) error {
		for _, l := range lines {
			p, err := tx.LockProduct(ctx, l.ProductID)
			if err != nil {
				return fmt.Errorf("lock product %s: %w", l.ProductID, err)
			}
			if p == nil {
				continue
			}
			if err := tx.UpdateProductStock(ctx, p.ID, p.Stock+l.Quantity); err != nil {
				return fmt.Errorf("restore stock %s: %w", p.ID, err)
			}
		}
		o.Status = order.StatusCancelled
		o.UpdatedBy = &callerID
		return tx.UpdateOrderStatus(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, id)
}

// Remove тамбстоунит заказ целиком, не трогая складские остатки.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.findOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SoftDeleteOrder(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.findOne(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]order.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *Service) ListMine(ctx context.Context, callerID uuid.UUID) ([]order.Order, error) {
	return s.repo.ListOrdersByUser(ctx, callerID)
}

func (s *Service) findOne(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.repo.FindOrderByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
