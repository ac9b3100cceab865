package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/order"
	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_at, status, shipped_at, delivered_at, order_by, updated_by, shipping_id`

func scanOrder(row rowScanner) (*order.Order, uuid.UUID, error) {
	o := &order.Order{}
	var shippedAt, deliveredAt sql.NullTime
	var updatedBy uuid.NullUUID
	var shippingID uuid.UUID
	if err := row.Scan(&o.ID, &o.OrderAt, &o.Status, &shippedAt, &deliveredAt,
		&o.OrderBy, &updatedBy, &shippingID); err != nil {
		return nil, uuid.Nil, err
	}
	if shippedAt.Valid {
		o.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if updatedBy.Valid {
		o.UpdatedBy = &updatedBy.UUID
	}
	return o, shippingID, nil
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 AND deleted_at IS NULL`
	o, shippingID, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadOrderRelations(ctx, o, shippingID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStorage) listOrders(ctx context.Context, q string, args ...any) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	var shippingIDs []uuid.UUID
	for rows.Next() {
		o, shippingID, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
		shippingIDs = append(shippingIDs, shippingID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadOrderRelations(ctx, &out[i], shippingIDs[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStorage) ListOrders(ctx context.Context) ([]order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE deleted_at IS NULL ORDER BY created_at DESC`
	return s.listOrders(ctx, q)
}

func (s *PostgresStorage) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	q := `SELECT ` + orderColumns + `
        FROM orders WHERE order_by=$1 AND deleted_at IS NULL ORDER BY created_at DESC`
	return s.listOrders(ctx, q, userID)
}

// loadOrderRelations догружает shipping и строки заказа вместе с товарами.
// Товар строки может быть уже удалён из каталога — тогда product будет nil.
func (s *PostgresStorage) loadOrderRelations(ctx context.Context, o *order.Order, shippingID uuid.UUID) error {
	const shipQ = `
        SELECT id, phone, name, address, city, post_code, state, country, created_at
        FROM shipping WHERE id=$1`
	sh := &order.Shipping{}
	if err := s.db.QueryRowContext(ctx, shipQ, shippingID).
		Scan(&sh.ID, &sh.Phone, &sh.Name, &sh.Address, &sh.City, &sh.PostCode,
			&sh.State, &sh.Country, &sh.CreatedAt); err != nil {
		return fmt.Errorf("load shipping: %w", err)
	}
	o.Shipping = sh

	const linesQ = `
        SELECT l.id, l.order_id, l.product_id, l.unit_price, l.quantity,
               p.id, p.title, p.description, p.price, p.stock, p.images, p.added_by, p.category_id, p.created_at
        FROM order_products l
        LEFT JOIN products p ON p.id = l.product_id AND p.deleted_at IS NULL
        WHERE l.order_id=$1 AND l.deleted_at IS NULL
        ORDER BY l.position, l.id`
	rows, err := s.db.QueryContext(ctx, linesQ, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		var pid uuid.NullUUID
		var title, description, images sql.NullString
		var price decimal.NullDecimal
		var stock sql.NullInt64
		var addedBy, categoryID uuid.NullUUID
		var createdAt sql.NullTime
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.UnitPrice, &l.Quantity,
			&pid, &title, &description, &price, &stock, &images, &addedBy, &categoryID, &createdAt); err != nil {
			return err
		}
		if pid.Valid {
			l.Product = &product.Product{
				ID:          pid.UUID,
				Title:       title.String,
				Description: description.String,
				Price:       price.Decimal,
				Stock:       int(stock.Int64),
				Images:      splitImages(images.String),
				AddedBy:     addedBy.UUID,
				CategoryID:  categoryID.UUID,
				CreatedAt:   createdAt.Time,
			}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	o.Lines = lines
	return nil
}

func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	return updateOrderStatus(ctx, s.db, o)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateOrderStatus(ctx context.Context, db execer, o *order.Order) error {
	q := `
        UPDATE orders
        SET status=$1, shipped_at=$2, delivered_at=$3, updated_by=$4, updated_at=$5
        WHERE id=$6 AND deleted_at IS NULL`
	_, err := db.ExecContext(ctx, q,
		o.Status, o.ShippedAt, o.DeliveredAt, o.UpdatedBy, time.Now().UTC(), o.ID,
	)
	return err
}

// SoftDeleteOrder тамбстоунит заказ каскадом: строки и shipping вместе с ним.
func (s *PostgresStorage) SoftDeleteOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stmts := []string{
		`UPDATE order_products SET deleted_at=$1 WHERE order_id=$2 AND deleted_at IS NULL`,
		`UPDATE shipping SET deleted_at=$1
             WHERE id=(SELECT shipping_id FROM orders WHERE id=$2) AND deleted_at IS NULL`,
		`UPDATE orders SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, now, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
