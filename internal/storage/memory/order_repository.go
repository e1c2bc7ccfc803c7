package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository
// для локальной разработки и тестов. Идентификаторы и таймстемпы
// присваиваются так же, как это делает база.
type orderRepositoryInMemory struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		nextID: 1,
		orders: make(map[int64]domain.Order),
	}
}

// Create присваивает заказу идентификатор и сохраняет копию,
// чтобы избежать непредсказуемых мутаций извне.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	order.ID = r.nextID
	order.CreatedAt = now
	order.UpdatedAt = now

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	for i := range items {
		items[i].ID = int64(i + 1)
	}
	order.Items = items

	r.orders[order.ID] = order
	r.nextID++

	return order.ID, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items

	return order, nil
}

// List возвращает шапки заказов, новые первыми.
func (r *orderRepositoryInMemory) List(_ context.Context, status string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if status != "" && string(order.Status) != status {
			continue
		}
		order.Items = nil
		result = append(result, order)
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

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
