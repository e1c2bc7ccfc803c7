package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	// EventTypeOrderCreated публикуется после успешного коммита заказа.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeCatalogSynced публикуется после обновления каталога из фидов поставщиков.
	EventTypeCatalogSynced EventType = "catalog.synced"
)

// Topics для Kafka.
const (
	TopicOrderEvents   = "partstore.order.events"
	TopicCatalogEvents = "partstore.catalog.events"
)

// OrderEvent — событие жизненного цикла заказа. Публикация идёт строго
// после коммита транзакции: событие о несуществующем заказе недопустимо.
type OrderEvent struct {
	EventType   EventType `json:"event_type"`
	OrderID     int64     `json:"order_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderCreatedEvent создаёт событие о новом заказе.
func NewOrderCreatedEvent(orderID int64, status, totalAmount string, itemCount int) *OrderEvent {
	return &OrderEvent{
		EventType:   EventTypeOrderCreated,
		OrderID:     orderID,
		Status:      status,
		TotalAmount: totalAmount,
		ItemCount:   itemCount,
		Timestamp:   time.Now(),
	}
}

// CatalogEvent — событие синхронизации каталога с поставщиками.
type CatalogEvent struct {
	EventType EventType `json:"event_type"`
	Updated   int64     `json:"updated"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCatalogSyncedEvent создаёт событие об обновлении каталога.
func NewCatalogSyncedEvent(updated int64) *CatalogEvent {
	return &CatalogEvent{
		EventType: EventTypeCatalogSynced,
		Updated:   updated,
		Timestamp: time.Now(),
	}
}
