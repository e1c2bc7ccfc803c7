package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

func TestProductRepository_PostgresSearch(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewProductRepository(store)
	ctx := context.Background()

	all, err := repo.Search(ctx, domain.ProductFilter{}, 0)
	if err != nil {
		t.Fatalf("search all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	for _, p := range all {
		if p.Supplier != "АвтоТрейд" {
			t.Fatalf("expected supplier name to be joined, got %q", p.Supplier)
		}
	}

	filters, err := repo.Search(ctx, domain.ProductFilter{Category: "filters"}, 0)
	if err != nil {
		t.Fatalf("search by category: %v", err)
	}
	if len(filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(filters))
	}

	// ILIKE: регистр артикула не важен.
	byArticle, err := repo.Search(ctx, domain.ProductFilter{Search: "bp-2210"}, 0)
	if err != nil {
		t.Fatalf("search by article: %v", err)
	}
	if len(byArticle) != 1 || byArticle[0].Article != "BP-2210" {
		t.Fatalf("unexpected search result: %+v", byArticle)
	}

	both, err := repo.Search(ctx, domain.ProductFilter{Category: "filters", Search: "масляный"}, 0)
	if err != nil {
		t.Fatalf("search by category and substring: %v", err)
	}
	if len(both) != 1 || both[0].Article != "OF-1042" {
		t.Fatalf("unexpected combined search result: %+v", both)
	}
}

// Пользовательский ввод не должен попадать в текст запроса:
// попытка инъекции возвращает пустой результат, таблица остаётся на месте.
func TestProductRepository_PostgresSearchHostileInput(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewProductRepository(store)
	ctx := context.Background()

	hostile, err := repo.Search(ctx, domain.ProductFilter{Search: "'; DROP TABLE products; --"}, 0)
	if err != nil {
		t.Fatalf("search with hostile input: %v", err)
	}
	if len(hostile) != 0 {
		t.Fatalf("expected no matches, got %d", len(hostile))
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := store.DB().QueryRowContext(queryCtx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		t.Fatalf("products table must survive hostile input: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products after hostile search, got %d", count)
	}
}

func TestProductRepository_PostgresSyncFromSuppliers(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewProductRepository(store)
	ctx := context.Background()

	updated, err := repo.SyncFromSuppliers(ctx)
	if err != nil {
		t.Fatalf("sync from suppliers: %v", err)
	}
	if updated != 3 {
		t.Fatalf("expected 3 refreshed products, got %d", updated)
	}

	products, err := repo.Search(ctx, domain.ProductFilter{}, 0)
	if err != nil {
		t.Fatalf("search after sync: %v", err)
	}
	for _, p := range products {
		if p.Price.IsNegative() {
			t.Fatalf("sync produced negative price %s for %s", p.Price, p.Article)
		}
		if p.Quantity < 0 {
			t.Fatalf("sync produced negative quantity %d for %s", p.Quantity, p.Article)
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var stale int
	if err := store.DB().QueryRowContext(queryCtx, `
		SELECT COUNT(*) FROM suppliers WHERE is_active = TRUE AND last_sync IS NULL
	`).Scan(&stale); err != nil {
		t.Fatalf("query suppliers: %v", err)
	}
	if stale != 0 {
		t.Fatalf("expected last_sync set for all active suppliers, %d left stale", stale)
	}
}
