package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

const (
	syncTimeout = 30 * time.Second
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

// Search выполняет выборку каталога. Значения фильтров попадают в запрос
// только через bound-параметры, конкатенация пользовательского ввода
// в текст запроса недопустима.
func (r *productRepository) Search(ctx context.Context, filter domain.ProductFilter, limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT p.id, p.name, p.article, p.category, p.price,
		       p.in_stock, p.quantity, COALESCE(p.image_url, ''),
		       COALESCE(p.manufacturer, ''), COALESCE(s.name, ''),
		       p.created_at, p.updated_at
		FROM products p
		LEFT JOIN suppliers s ON p.supplier_id = s.id
	`

	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.article ILIKE $%d)", n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Article, &p.Category, &p.Price,
			&p.InStock, &p.Quantity, &p.ImageURL,
			&p.Manufacturer, &p.Supplier,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// SyncFromSuppliers имитирует обмен с API поставщиков: часть цен и остатков
// случайно меняется прямо в SQL, флаг наличия пересчитывается по остатку,
// у активных поставщиков обновляется отметка последней синхронизации.
// Обновление товаров и отметка поставщиков коммитятся одной транзакцией.
func (r *productRepository) SyncFromSuppliers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET updated_at = NOW(),
		    price = CASE
		        WHEN random() > 0.7 THEN ROUND(price * (1 + (random() * 0.1 - 0.05)), 2)
		        ELSE price
		    END,
		    quantity = CASE
		        WHEN random() > 0.8 THEN GREATEST(0, quantity + FLOOR(random() * 10 - 5)::INTEGER)
		        ELSE quantity
		    END,
		    in_stock = CASE
		        WHEN quantity > 0 THEN TRUE
		        ELSE FALSE
		    END
	`)
	if err != nil {
		return 0, fmt.Errorf("refresh products: %w", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE suppliers SET last_sync = NOW() WHERE is_active = TRUE
	`); err != nil {
		return 0, fmt.Errorf("touch suppliers: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit supplier sync: %w", err)
	}

	return updated, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
