package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — позиция каталога автозапчастей.
type Product struct {
	ID           int64
	Name         string
	Article      string
	Category     string
	Price        decimal.Decimal
	InStock      bool
	Quantity     int32
	ImageURL     string
	Manufacturer string
	// Supplier — название поставщика из справочника suppliers.
	Supplier  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductFilter задаёт фильтры каталога: точное совпадение категории
// и регистронезависимый поиск подстроки по названию или артикулу.
// Пустые поля означают отсутствие фильтра.
type ProductFilter struct {
	Category string
	Search   string
}
