package domain

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	minPhoneDigits   = 10
	minAddressLength = 5
)

// OrderItemRequest — позиция заказа в том виде, как её присылает клиент.
// Цена принимается как json.Number: нечисловое значение должно давать
// ошибку валидации по конкретному полю, а не по запросу целиком.
type OrderItemRequest struct {
	ProductID      int64       `json:"product_id"`
	ProductName    string      `json:"product_name"`
	ProductArticle string      `json:"product_article"`
	Quantity       int32       `json:"quantity"`
	Price          json.Number `json:"price"`
}

// CreateOrderRequest — входной запрос на оформление заказа.
// Поле total_amount от клиента сознательно не принимается:
// сумма всегда пересчитывается на сервере.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerEmail   string             `json:"customer_email"`
	DeliveryAddress string             `json:"delivery_address"`
	DeliveryMethod  string             `json:"delivery_method"`
	PaymentMethod   string             `json:"payment_method"`
	Items           []OrderItemRequest `json:"items"`
}

// Validate проверяет запрос и возвращает все нарушенные ограничения,
// а не только первое. Пустой результат означает валидный запрос.
func (r CreateOrderRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CustomerName == "" {
		errs = append(errs, FieldError{Field: "customer_name", Err: ErrCustomerNameRequired})
	}
	if countDigits(r.CustomerPhone) < minPhoneDigits {
		errs = append(errs, FieldError{Field: "customer_phone", Err: ErrPhoneInvalid})
	}
	if utf8.RuneCountInString(r.DeliveryAddress) < minAddressLength {
		errs = append(errs, FieldError{Field: "delivery_address", Err: ErrAddressTooShort})
	}
	if len(r.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Err: ErrItemsRequired})
	}

	for idx, item := range r.Items {
		if item.Quantity <= 0 {
			errs = append(errs, FieldError{
				Field: fmt.Sprintf("items[%d].quantity", idx),
				Err:   ErrItemQtyInvalid,
			})
		}
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil || price.Sign() <= 0 {
			errs = append(errs, FieldError{
				Field: fmt.Sprintf("items[%d].price", idx),
				Err:   ErrItemPriceInvalid,
			})
		}
	}

	return errs
}

// Order строит доменный заказ из валидного запроса: статус new,
// телефон сохраняется в исходном виде, сумма пересчитывается по позициям.
// Вызывается только после успешного Validate.
func (r CreateOrderRequest) Order() (Order, error) {
	items := make([]OrderItem, 0, len(r.Items))
	for idx, item := range r.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			return Order{}, fmt.Errorf("parse items[%d].price: %w", idx, err)
		}
		items = append(items, OrderItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ProductArticle: item.ProductArticle,
			Quantity:       item.Quantity,
			Price:          price,
		})
	}

	return Order{
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		DeliveryAddress: r.DeliveryAddress,
		DeliveryMethod:  r.DeliveryMethod,
		PaymentMethod:   r.PaymentMethod,
		TotalAmount:     OrderTotal(items),
		Status:          OrderStatusNew,
		Items:           items,
	}, nil
}

// countDigits считает цифры в строке, отбрасывая пробелы, скобки, плюсы
// и прочие разделители. Используется только для валидации: в базу
// телефон попадает в исходном виде.
func countDigits(s string) int {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits
}
