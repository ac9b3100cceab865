package order

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/antonminaichev/gophershop/internal/storage"
	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore эмулирует Postgres-репозиторий в памяти: InTransaction держит
// общий мьютекс на всю транзакцию (аналог row-lock'ов), изменения
// применяются только при успешном завершении fn.
type fakeStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*product.Product
	orders   map[uuid.UUID]*order.Order
	deleted  map[uuid.UUID]bool

	txCalls     int
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[uuid.UUID]*product.Product),
		orders:   make(map[uuid.UUID]*order.Order),
		deleted:  make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) addProduct(price string, stock int) uuid.UUID {
	id := uuid.New()
	s.products[id] = &product.Product{
		ID:    id,
		Title: "product " + id.String()[:8],
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	return id
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	if o.Shipping != nil {
		sh := *o.Shipping
		cp.Shipping = &sh
	}
	cp.Lines = make([]order.Line, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return &cp
}

func (s *fakeStore) FindOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || s.deleted[id] {
		return nil, sql.ErrNoRows
	}
	return copyOrder(o), nil
}

func (s *fakeStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for id, o := range s.orders {
		if !s.deleted[id] {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (s *fakeStore) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	all, _ := s.ListOrders(ctx)
	var out []order.Order
	for _, o := range all {
		if o.OrderBy == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	stored, ok := s.orders[o.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = o.Status
	stored.ShippedAt = o.ShippedAt
	stored.DeliveredAt = o.DeliveredAt
	stored.UpdatedBy = o.UpdatedBy
	return nil
}

func (s *fakeStore) SoftDeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[id] = true
	return nil
}

func (s *fakeStore) InTransaction(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCalls++
	tx := &fakeTx{store: s, stockUpdates: make(map[uuid.UUID]int)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type fakeTx struct {
	store        *fakeStore
	stockUpdates map[uuid.UUID]int
	order        *order.Order
	lines        []order.Line
	statusUpdate *order.Order
}

func (t *fakeTx) LockProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, ok := t.store.products[id]
	if !ok || t.store.deleted[id] {
		return nil, nil
	}
	cp := *p
	if v, ok := t.stockUpdates[id]; ok {
		cp.Stock = v
	}
	return &cp, nil
}

func (t *fakeTx) UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error {
	t.stockUpdates[id] = stock
	return nil
}

func (t *fakeTx) CreateShipping(ctx context.Context, sh *order.Shipping) error {
	return nil
}

func (t *fakeTx) CreateOrder(ctx context.Context, o *order.Order) error {
	t.order = o
	return nil
}

func (t *fakeTx) CreateOrderLines(ctx context.Context, lines []order.Line) error {
	t.lines = lines
	return nil
}

func (t *fakeTx) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	t.statusUpdate = o
	return nil
}

func (t *fakeTx) commit() {
	for id, stock := range t.stockUpdates {
		t.store.products[id].Stock = stock
	}
	if t.order != nil {
		cp := copyOrder(t.order)
		cp.Lines = make([]order.Line, len(t.lines))
		copy(cp.Lines, t.lines)
		t.store.orders[cp.ID] = cp
	}
	if t.statusUpdate != nil {
		if stored, ok := t.store.orders[t.statusUpdate.ID]; ok {
			stored.Status = t.statusUpdate.Status
			stored.ShippedAt = t.statusUpdate.ShippedAt
			stored.DeliveredAt = t.statusUpdate.DeliveredAt
			stored.UpdatedBy = t.statusUpdate.UpdatedBy
		}
	}
}

func shippingFixture() order.Shipping {
	return order.Shipping{
		Phone:    "+79990001122",
		Address:  "Tverskaya 1",
		City:     "Moscow",
		PostCode: "125009",
		State:    "Moscow",
		Country:  "RU",
	}
}

func placeOrder(t *testing.T, svc *Service, caller uuid.UUID, items ...order.OrderedItem) *order.Order {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), caller, &order.CreateOrderRequest{
		Shipping: shippingFixture(),
		Items:    items,
	})
	require.NoError(t, err)
	return o
}

func item(productID uuid.UUID, price string, qty int) order.OrderedItem {
	return order.OrderedItem{
		ProductID: productID,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
		Shipping: shippingFixture(),
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPlaceOrderDuplicateProducts(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("9.99", 10)
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
		Shipping: shippingFixture(),
		Items:    []order.OrderedItem{item(pid, "9.99", 1), item(pid, "9.99", 2)},
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), pid.String())
	// валидация падает до каких-либо записей
	assert.Zero(t, store.txCalls)
	assert.Equal(t, 10, store.products[pid].Stock)
}

func TestPlaceOrderBadItems(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("9.99", 10)
	svc := NewService(store)

	tests := []struct {
		name string
		it   order.OrderedItem
	}{
		{"zero quantity", item(pid, "9.99", 0)},
		{"negative quantity", item(pid, "9.99", -2)},
		{"zero price", item(pid, "0", 1)},
		{"negative price", item(pid, "-1.50", 1)},
		{"three decimal places", item(pid, "9.999", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
				Shipping: shippingFixture(),
				Items:    []order.OrderedItem{tt.it},
			})
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Zero(t, store.txCalls)
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	store := newFakeStore()
	existing := store.addProduct("5.00", 10)
	missing := uuid.New()
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
		Shipping: shippingFixture(),
		Items:    []order.OrderedItem{item(existing, "5.00", 1), item(missing, "5.00", 1)},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), missing.String())
	// полный откат: ни заказа, ни списания
	assert.Empty(t, store.orders)
	assert.Equal(t, 10, store.products[existing].Stock)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	store := newFakeStore()
	first := store.addProduct("5.00", 10)
	second := store.addProduct("7.00", 1)
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
		Shipping: shippingFixture(),
		Items:    []order.OrderedItem{item(first, "5.00", 2), item(second, "7.00", 5)},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, second, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	assert.Empty(t, store.orders)
	assert.Equal(t, 10, store.products[first].Stock)
	assert.Equal(t, 1, store.products[second].Stock)
}

func TestPlaceOrderSuccess(t *testing.T) {
	store := newFakeStore()
	cheap := store.addProduct("5.00", 10)
	dear := store.addProduct("9.99", 3)
	svc := NewService(store)
	caller := uuid.New()

	// покупатель прислал неверную цену — спишется каталожная
	o := placeOrder(t, svc, caller,
		item(dear, "0.01", 2),
		item(cheap, "0.01", 1),
	)

	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Equal(t, caller, o.OrderBy)
	assert.Nil(t, o.UpdatedBy)
	require.Len(t, o.Lines, 2)
	// порядок строк — как прислал покупатель
	assert.Equal(t, dear, o.Lines[0].ProductID)
	assert.Equal(t, cheap, o.Lines[1].ProductID)
	assert.True(t, o.Lines[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, o.Lines[1].UnitPrice.Equal(decimal.RequireFromString("5.00")))

	assert.Equal(t, 1, store.products[dear].Stock)
	assert.Equal(t, 9, store.products[cheap].Stock)
}

func TestOrderTotal(t *testing.T) {
	store := newFakeStore()
	a := store.addProduct("9.99", 10)
	b := store.addProduct("5.00", 10)
	svc := NewService(store)

	o := placeOrder(t, svc, uuid.New(), item(a, "9.99", 2), item(b, "5.00", 1))
	assert.True(t, o.Total().Equal(decimal.RequireFromString("24.98")),
		"total = %s", o.Total())
}

func TestTransitionNoOp(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)

	o := placeOrder(t, svc, uuid.New(), item(pid, "5.00", 1))
	txBefore, updBefore := store.txCalls, store.updateCalls

	got, err := svc.Transition(context.Background(), o.ID, order.StatusProcessing, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)
	assert.Nil(t, got.UpdatedBy)
	// идемпотентный no-op не пишет в хранилище
	assert.Equal(t, txBefore, store.txCalls)
	assert.Equal(t, updBefore, store.updateCalls)
}

func TestTransitionIllegal(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 1))

	// processing -> delivered запрещён, сначала shipped
	_, err := svc.Transition(context.Background(), o.ID, order.StatusDelivered, caller)
	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, order.StatusProcessing, transErr.From)
	assert.Equal(t, order.StatusDelivered, transErr.To)

	// терминальный статус не меняется ничем
	_, err = svc.Transition(context.Background(), o.ID, order.StatusShipped, caller)
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), o.ID, order.StatusDelivered, caller)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), o.ID, order.StatusProcessing, caller)
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, order.StatusDelivered, transErr.From)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Transition(context.Background(), uuid.New(), order.Status("lost"), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTransitionNotFound(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Transition(context.Background(), uuid.New(), order.StatusShipped, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTransitionTimestamps(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 1))
	assert.Nil(t, o.ShippedAt)
	assert.Nil(t, o.DeliveredAt)

	shipped, err := svc.Transition(context.Background(), o.ID, order.StatusShipped, caller)
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedAt)
	assert.Nil(t, shipped.DeliveredAt)
	require.NotNil(t, shipped.UpdatedBy)
	assert.Equal(t, caller, *shipped.UpdatedBy)

	delivered, err := svc.Transition(context.Background(), o.ID, order.StatusDelivered, caller)
	require.NoError(t, err)
	assert.Equal(t, *shipped.ShippedAt, *delivered.ShippedAt)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestCancelRestoresStock(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 3))
	assert.Equal(t, 7, store.products[pid].Stock)

	cancelled, err := svc.Cancel(context.Background(), o.ID, caller)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.UpdatedBy)
	assert.Equal(t, caller, *cancelled.UpdatedBy)
	assert.Equal(t, 10, store.products[pid].Stock)
}

func TestTransitionToCancelledRunsCompensation(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 4))
	assert.Equal(t, 6, store.products[pid].Stock)

	got, err := svc.Transition(context.Background(), o.ID, order.StatusCancelled, caller)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.Equal(t, 10, store.products[pid].Stock)
}

func TestTransitionShippedToCancelledRejected(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 4))
	_, err := svc.Transition(context.Background(), o.ID, order.StatusShipped, caller)
	require.NoError(t, err)

	// отправленный заказ через смену статуса не отменяется
	_, err = svc.Transition(context.Background(), o.ID, order.StatusCancelled, caller)
	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, order.StatusShipped, transErr.From)
	assert.Equal(t, order.StatusCancelled, transErr.To)

	got, err := svc.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)
	assert.Equal(t, 6, store.products[pid].Stock)

	// прямой Cancel для отправленного заказа по-прежнему доступен
	cancelled, err := svc.Cancel(context.Background(), o.ID, caller)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, store.products[pid].Stock)
}

func TestTransitionTerminalSameStatusRejected(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 1))
	_, err := svc.Transition(context.Background(), o.ID, order.StatusShipped, caller)
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), o.ID, order.StatusDelivered, caller)
	require.NoError(t, err)

	// повтор терминального статуса — не no-op, а ошибка
	_, err = svc.Transition(context.Background(), o.ID, order.StatusDelivered, caller)
	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, order.StatusDelivered, transErr.From)

	o2 := placeOrder(t, svc, caller, item(pid, "5.00", 1))
	_, err = svc.Cancel(context.Background(), o2.ID, caller)
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), o2.ID, order.StatusCancelled, caller)
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, order.StatusCancelled, transErr.From)
}

func TestCancelSkipsRemovedProduct(t *testing.T) {
	store := newFakeStore()
	kept := store.addProduct("5.00", 10)
	gone := store.addProduct("7.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(kept, "5.00", 2), item(gone, "7.00", 3))
	store.deleted[gone] = true

	cancelled, err := svc.Cancel(context.Background(), o.ID, caller)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, store.products[kept].Stock)
	// удалённому товару остаток не возвращается
	assert.Equal(t, 7, store.products[gone].Stock)
}

func TestCancelTerminal(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)
	caller := uuid.New()

	o := placeOrder(t, svc, caller, item(pid, "5.00", 1))
	_, err := svc.Cancel(context.Background(), o.ID, caller)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), o.ID, caller)
	var transErr *TransitionError
	assert.ErrorAs(t, err, &transErr)
}

func TestRemoveLeavesStockAlone(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(store)

	o := placeOrder(t, svc, uuid.New(), item(pid, "5.00", 3))
	removed, err := svc.Remove(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, removed.ID)

	_, err = svc.FindByID(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	// Remove не трогает складские остатки
	assert.Equal(t, 7, store.products[pid].Stock)
}

func TestConservationAcrossPlaceAndCancel(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 20)
	svc := NewService(store)
	caller := uuid.New()

	o1 := placeOrder(t, svc, caller, item(pid, "5.00", 4))
	o2 := placeOrder(t, svc, caller, item(pid, "5.00", 6))
	_, err := svc.Cancel(context.Background(), o1.ID, caller)
	require.NoError(t, err)
	o3 := placeOrder(t, svc, caller, item(pid, "5.00", 5))

	reserved := 0
	for _, id := range []uuid.UUID{o2.ID, o3.ID} {
		o, err := svc.FindByID(context.Background(), id)
		require.NoError(t, err)
		for _, l := range o.Lines {
			reserved += l.Quantity
		}
	}
	// склад + активные резервы = исходный остаток
	assert.Equal(t, 20, store.products[pid].Stock+reserved)
}

func TestConcurrentPlacementNoOversell(t *testing.T) {
	const (
		workers = 8
		qty     = 3
	)
	store := newFakeStore()
	pid := store.addProduct("5.00", qty*(workers-1))
	svc := NewService(store)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
				Shipping: shippingFixture(),
				Items:    []order.OrderedItem{item(pid, "5.00", qty)},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			insufficient++
		}
	}
	assert.Equal(t, workers-1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 0, store.products[pid].Stock)
}

func TestListMineFiltersByCaller(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 100)
	svc := NewService(store)

	alice := uuid.New()
	bob := uuid.New()
	placeOrder(t, svc, alice, item(pid, "5.00", 1))
	placeOrder(t, svc, alice, item(pid, "5.00", 2))
	placeOrder(t, svc, bob, item(pid, "5.00", 3))

	mine, err := svc.ListMine(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPlaceOrderRepoFailureIsPropagated(t *testing.T) {
	store := newFakeStore()
	pid := store.addProduct("5.00", 10)
	svc := NewService(&failingStore{fakeStore: store})

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), &order.CreateOrderRequest{
		Shipping: shippingFixture(),
		Items:    []order.OrderedItem{item(pid, "5.00", 1)},
	})
	assert.EqualError(t, errors.Unwrap(err), "connection reset")
	assert.Empty(t, store.orders)
	assert.Equal(t, 10, store.products[pid].Stock)
}

type failingStore struct {
	*fakeStore
}

func (s *failingStore) InTransaction(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	return fn(&failingTx{})
}

type failingTx struct{}

func (t *failingTx) LockProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return nil, errors.New("connection reset")
}
func (t *failingTx) UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error {
	return errors.New("connection reset")
}
func (t *failingTx) CreateShipping(ctx context.Context, sh *order.Shipping) error { return nil }
func (t *failingTx) CreateOrder(ctx context.Context, o *order.Order) error        { return nil }
func (t *failingTx) CreateOrderLines(ctx context.Context, lines []order.Line) error {
	return nil
}
func (t *failingTx) UpdateOrderStatus(ctx context.Context, o *order.Order) error { return nil }
