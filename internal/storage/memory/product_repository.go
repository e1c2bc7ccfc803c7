package memory

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

// productRepositoryInMemory — in-memory каталог для локальной разработки.
type productRepositoryInMemory struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewProductRepository возвращает in-memory каталог, заполненный seed-данными.
func NewProductRepository(seed []domain.Product) domain.ProductRepository {
	products := make([]domain.Product, len(seed))
	copy(products, seed)
	return &productRepositoryInMemory{products: products}
}

// Search фильтрует каталог так же, как SQL-реализация: категория по
// точному совпадению, поиск — подстрока без учёта регистра
// по названию или артикулу.
func (r *productRepositoryInMemory) Search(_ context.Context, filter domain.ProductFilter, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(filter.Search)

	result := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Article), needle) {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// SyncFromSuppliers повторяет рандомизированное обновление SQL-реализации:
// часть цен двигается в пределах ±5%, часть остатков — на ±5 единиц,
// флаг наличия пересчитывается по остатку.
func (r *productRepositoryInMemory) SyncFromSuppliers(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for i := range r.products {
		p := &r.products[i]
		if rand.Float64() > 0.7 {
			factor := decimal.NewFromFloat(1 + (rand.Float64()*0.1 - 0.05))
			p.Price = p.Price.Mul(factor).Round(2)
		}
		if rand.Float64() > 0.8 {
			delta := int32(rand.Intn(10) - 5)
			if p.Quantity+delta < 0 {
				p.Quantity = 0
			} else {
				p.Quantity += delta
			}
		}
		p.InStock = p.Quantity > 0
		p.UpdatedAt = now
	}

	return int64(len(r.products)), nil
}

// SampleCatalog возвращает небольшой набор автозапчастей для dev-режима,
// когда PostgreSQL не настроен.
func SampleCatalog() []domain.Product {
	now := time.Now().UTC()
	return []domain.Product{
		{
			ID: 1, Name: "Масляный фильтр", Article: "OF-1042",
			Category: "filters", Price: decimal.NewFromFloat(450.00),
			InStock: true, Quantity: 24, Manufacturer: "MANN",
			Supplier: "АвтоТрейд", CreatedAt: now.Add(-72 * time.Hour), UpdatedAt: now,
		},
		{
			ID: 2, Name: "Тормозные колодки передние", Article: "BP-2210",
			Category: "brakes", Price: decimal.NewFromFloat(2190.00),
			InStock: true, Quantity: 8, Manufacturer: "Brembo",
			Supplier: "АвтоТрейд", CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now,
		},
		{
			ID: 3, Name: "Свеча зажигания", Article: "SP-7733",
			Category: "ignition", Price: decimal.NewFromFloat(320.00),
			InStock: true, Quantity: 60, Manufacturer: "NGK",
			Supplier: "ЗапчастьОпт", CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now,
		},
		{
			ID: 4, Name: "Воздушный фильтр", Article: "AF-5120",
			Category: "filters", Price: decimal.NewFromFloat(680.00),
			InStock: false, Quantity: 0, Manufacturer: "Bosch",
			Supplier: "ЗапчастьОпт", CreatedAt: now.Add(-12 * time.Hour), UpdatedAt: now,
		},
	}
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
