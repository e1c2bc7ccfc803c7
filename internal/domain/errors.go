package domain

import "errors"

var (
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer_name is required")
	// Ошибка телефона, в котором меньше 10 цифр после удаления разделителей.
	ErrPhoneInvalid = errors.New("customer_phone must contain at least 10 digits")
	// Ошибка слишком короткого адреса доставки.
	ErrAddressTooShort = errors.New("delivery_address must be at least 5 characters")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка при некорректной цене позиции (не число или <= 0).
	ErrItemPriceInvalid = errors.New("item price must be a number greater than zero")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
)

// FieldError привязывает ошибку валидации к конкретному полю запроса,
// чтобы транспортный слой мог перечислить все проблемные поля в одном ответе.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}
