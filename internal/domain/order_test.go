package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

func TestOrderItemLineTotal(t *testing.T) {
	item := domain.OrderItem{
		Quantity: 3,
		Price:    decimal.RequireFromString("19.99"),
	}

	want := decimal.RequireFromString("59.97")
	if got := item.LineTotal(); !got.Equal(want) {
		t.Fatalf("expected line total %s, got %s", want, got)
	}
}

// Сумма считается в decimal: двоичное округление float64 на копейках недопустимо.
func TestOrderTotal_DecimalExact(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 1, Price: decimal.RequireFromString("0.1")},
		{Quantity: 1, Price: decimal.RequireFromString("0.2")},
	}

	want := decimal.RequireFromString("0.3")
	if got := domain.OrderTotal(items); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestOrderTotal_MultipleItems(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 2, Price: decimal.RequireFromString("500.00")},
		{Quantity: 4, Price: decimal.RequireFromString("320.50")},
	}

	want := decimal.RequireFromString("2282.00")
	if got := domain.OrderTotal(items); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestOrderTotal_Empty(t *testing.T) {
	if got := domain.OrderTotal(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", got)
	}
}
