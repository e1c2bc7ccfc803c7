package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа в магазине автозапчастей.
type OrderStatus string

const (
	// OrderStatusNew — заказ принят, обработка ещё не началась.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusProcessing — заказ взят в работу менеджером.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку (терминальный статус).
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCancelled — заказ отменён (терминальный статус).
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem представляет одну позицию заказа. Название и артикул товара
// фиксируются на момент оформления: последующие изменения каталога
// не должны менять исторические заказы.
type OrderItem struct {
	ID             int64
	ProductID      int64
	ProductName    string
	ProductArticle string
	Quantity       int32
	// Price — цена за единицу на момент заказа. Денежная арифметика
	// ведётся в decimal, float64 для денег не используется.
	Price decimal.Decimal
}

// LineTotal возвращает стоимость позиции: quantity * price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order агрегирует шапку заказа и его позиции.
type Order struct {
	ID              int64
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	DeliveryAddress string
	DeliveryMethod  string
	PaymentMethod   string
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderTotal вычисляет сумму заказа как сумму стоимостей позиций.
// Значение авторитетно: сумма, присланная клиентом, никогда не используется.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
