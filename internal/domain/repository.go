package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create атомарно сохраняет шапку заказа и все его позиции,
	// возвращая присвоенный хранилищем идентификатор. Частичная запись
	// (шапка без позиций или позиции без шапки) недопустима.
	Create(ctx context.Context, order Order) (int64, error)
	// Get возвращает заказ с позициями или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id int64) (Order, error)
	// List возвращает шапки заказов (без позиций), новые первыми.
	// Непустой status фильтрует по точному совпадению; limit > 0 ограничивает выборку.
	List(ctx context.Context, status string, limit int) ([]Order, error)
}

// ProductRepository описывает требования к каталогу товаров.
type ProductRepository interface {
	// Search возвращает товары по фильтру, новые первыми, не более limit.
	Search(ctx context.Context, filter ProductFilter, limit int) ([]Product, error)
	// SyncFromSuppliers обновляет цены и остатки по данным поставщиков
	// и возвращает количество обработанных товаров.
	SyncFromSuppliers(ctx context.Context) (int64, error)
}
