package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antonminaichev/gophershop/internal/storage"
	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
)

// InTransaction выполняет fn в одной транзакции БД: либо коммитятся все
// записи резервирования, либо ни одной.
func (s *PostgresStorage) InTransaction(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&orderTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback: %v: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

type orderTx struct {
	tx *sql.Tx
}

// LockProduct блокирует строку товара до конца транзакции. Конкурентные
// резервирования одного товара сериализуются именно здесь.
func (t *orderTx) LockProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	q := `SELECT ` + productColumns + `
        FROM products WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`
	p, err := scanProduct(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (t *orderTx) UpdateProductStock(ctx context.Context, id uuid.UUID, stock int) error {
	q := `UPDATE products SET stock=$1, updated_at=now() WHERE id=$2 AND deleted_at IS NULL`
	_, err := t.tx.ExecContext(ctx, q, stock, id)
	return err
}

func (t *orderTx) CreateShipping(ctx context.Context, sh *order.Shipping) error {
	q := `
        INSERT INTO shipping (id, phone, name, address, city, post_code, state, country, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`
	_, err := t.tx.ExecContext(ctx, q,
		sh.ID, sh.Phone, sh.Name, sh.Address, sh.City, sh.PostCode, sh.State, sh.Country, sh.CreatedAt,
	)
	return err
}

func (t *orderTx) CreateOrder(ctx context.Context, o *order.Order) error {
	q := `
        INSERT INTO orders (id, order_at, status, order_by, shipping_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$2,$2)`
	_, err := t.tx.ExecContext(ctx, q, o.ID, o.OrderAt, o.Status, o.OrderBy, o.Shipping.ID)
	return err
}

func (t *orderTx) CreateOrderLines(ctx context.Context, lines []order.Line) error {
	// position сохраняет порядок строк, заданный покупателем
	q := `
        INSERT INTO order_products (id, order_id, product_id, unit_price, quantity, position, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,now(),now())`
	for i := range lines {
		l := &lines[i]
		if _, err := t.tx.ExecContext(ctx, q, l.ID, l.OrderID, l.ProductID, l.UnitPrice, l.Quantity, i); err != nil {
			return err
		}
	}
	return nil
}

func (t *orderTx) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	return updateOrderStatus(ctx, t.tx, o)
}
