package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/gophershop/internal/types/product"
	"github.com/google/uuid"
)

// images хранится как TEXT через запятую, по аналогии с ролями пользователя.
func joinImages(images []string) string {
	return strings.Join(images, ",")
}

func splitImages(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *PostgresStorage) CreateProduct(ctx context.Context, p *product.Product) error {
	q := `
        INSERT INTO products (id, title, description, price, stock, images, added_by, category_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Title, p.Description, p.Price, p.Stock, joinImages(p.Images),
		p.AddedBy, p.CategoryID, p.CreatedAt,
	)
	return err
}

const productColumns = `id, title, description, price, stock, images, added_by, category_id, created_at`

func scanProduct(row rowScanner) (*product.Product, error) {
	p := &product.Product{}
	var images string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock,
		&images, &p.AddedBy, &p.CategoryID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Images = splitImages(images)
	return p, nil
}

func (s *PostgresStorage) FindProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id=$1 AND deleted_at IS NULL`
	return scanProduct(s.db.QueryRowContext(ctx, q, id))
}

var productSortColumns = map[string]string{
	product.SortByCreatedAt: "created_at",
	product.SortByPrice:     "price",
	product.SortByTitle:     "title",
}

// ListProducts возвращает страницу каталога и общее число товаров под фильтром.
func (s *PostgresStorage) ListProducts(ctx context.Context, q *product.ListQuery) ([]product.Product, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.CategoryID != nil {
		args = append(args, *q.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if q.PriceMin != nil {
		args = append(args, *q.PriceMin)
		where = append(where, fmt.Sprintf("price >= $%d", len(args)))
	}
	if q.PriceMax != nil {
		args = append(args, *q.PriceMax)
		where = append(where, fmt.Sprintf("price <= $%d", len(args)))
	}
	if q.InStock {
		where = append(where, "stock > 0")
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQ := `SELECT COUNT(*) FROM products WHERE ` + cond
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := productSortColumns[q.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if q.Order == product.OrderAsc {
		dir = "ASC"
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	listQ := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		productColumns, cond, sortCol, dir, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (s *PostgresStorage) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]product.Product, error) {
	q := `SELECT ` + productColumns + `
        FROM products WHERE category_id=$1 AND deleted_at IS NULL ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) UpdateProduct(ctx context.Context, p *product.Product) error {
	q := `
        UPDATE products
        SET title=$1, description=$2, price=$3, stock=$4, images=$5, category_id=$6, updated_at=$7
        WHERE id=$8 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q,
		p.Title, p.Description, p.Price, p.Stock, joinImages(p.Images), p.CategoryID,
		time.Now().UTC(), p.ID,
	)
	return err
}

func (s *PostgresStorage) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE products SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	_, err := s.db.ExecContext(ctx, q, time.Now().UTC(), id)
	return err
}
