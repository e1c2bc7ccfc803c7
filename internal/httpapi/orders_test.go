package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
	"github.com/vladislavdragonenkov/partstore/internal/httpapi"
	"github.com/vladislavdragonenkov/partstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/partstore/internal/metrics"
	"github.com/vladislavdragonenkov/partstore/internal/storage/memory"
)

const validOrderBody = `{
	"customer_name": "Ivan",
	"customer_phone": "+7 916 123 45 67",
	"customer_email": "ivan@example.com",
	"delivery_address": "Moscow, Tverskaya 1",
	"delivery_method": "courier",
	"payment_method": "cash",
	"items": [
		{
			"product_id": 1,
			"product_name": "Масляный фильтр",
			"product_article": "OF-1042",
			"quantity": 2,
			"price": 500.0
		}
	]
}`

type capturedEvent struct {
	topic string
	key   string
	event any
}

type stubPublisher struct {
	err    error
	events []capturedEvent
}

func (p *stubPublisher) PublishEvent(topic string, key string, event any) error {
	p.events = append(p.events, capturedEvent{topic: topic, key: key, event: event})
	return p.err
}

type failingOrderRepo struct{}

func (failingOrderRepo) Create(context.Context, domain.Order) (int64, error) {
	return 0, errors.New("pq: connection reset by peer")
}

func (failingOrderRepo) Get(context.Context, int64) (domain.Order, error) {
	return domain.Order{}, domain.ErrOrderNotFound
}

func (failingOrderRepo) List(context.Context, string, int) ([]domain.Order, error) {
	return nil, errors.New("pq: connection reset by peer")
}

func newTestMetrics() *metrics.IntakeMetrics {
	return metrics.NewIntakeMetricsWithRegisterer(prometheus.NewRegistry())
}

func TestOrdersHandler_Create(t *testing.T) {
	repo := memory.NewOrderRepository()
	events := &stubPublisher{}
	handler := httpapi.NewOrdersHandler(repo, events, newTestMetrics(), nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Success bool  `json:"success"`
		OrderID int64 `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Equal(t, int64(1), resp.OrderID)

	stored, err := repo.Get(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "+7 916 123 45 67", stored.CustomerPhone)
	assert.Equal(t, domain.OrderStatusNew, stored.Status)
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(1000)), "total %s", stored.TotalAmount)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int32(2), stored.Items[0].Quantity)

	require.Len(t, events.events, 1)
	assert.Equal(t, kafka.TopicOrderEvents, events.events[0].topic)
	assert.Equal(t, "1", events.events[0].key)
}

func TestOrdersHandler_CreateValidationErrors(t *testing.T) {
	repo := memory.NewOrderRepository()
	handler := httpapi.NewOrdersHandler(repo, nil, newTestMetrics(), nil)

	body := `{
		"customer_name": "",
		"customer_phone": "12345",
		"customer_email": "",
		"delivery_address": "x",
		"items": []
	}`

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)

	// Клиент должен увидеть все нарушения разом, а не чинить их по одному.
	fields := make([]string, 0, len(resp.Details))
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"customer_name", "customer_phone", "delivery_address", "items"}, fields)

	// Ничего не сохранилось.
	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrdersHandler_CreateMalformedBody(t *testing.T) {
	handler := httpapi.NewOrdersHandler(memory.NewOrderRepository(), nil, newTestMetrics(), nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "malformed request body", resp["error"])
}

func TestOrdersHandler_CreateFieldTypeMismatch(t *testing.T) {
	handler := httpapi.NewOrdersHandler(memory.NewOrderRepository(), nil, newTestMetrics(), nil)

	body := strings.Replace(validOrderBody, `"quantity": 2`, `"quantity": "two"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Contains(t, resp.Details[0].Field, "quantity")
}

func TestOrdersHandler_CreateNonNumericPrice(t *testing.T) {
	handler := httpapi.NewOrdersHandler(memory.NewOrderRepository(), nil, newTestMetrics(), nil)

	body := strings.Replace(validOrderBody, `"price": 500.0`, `"price": "дорого"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "price")
}

func TestOrdersHandler_CreateStorageError(t *testing.T) {
	events := &stubPublisher{}
	handler := httpapi.NewOrdersHandler(failingOrderRepo{}, events, newTestMetrics(), nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Текст ошибки драйвера наружу не утекает.
	assert.Equal(t, "failed to save order", resp["error"])
	assert.NotContains(t, rec.Body.String(), "pq:")

	assert.Empty(t, events.events)
}

func TestOrdersHandler_CreatePublishFailureStillCreated(t *testing.T) {
	repo := memory.NewOrderRepository()
	events := &stubPublisher{err: errors.New("kafka: broker unreachable")}
	handler := httpapi.NewOrdersHandler(repo, events, newTestMetrics(), nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, err := repo.Get(context.Background(), 1)
	assert.NoError(t, err)
}

func TestOrdersHandler_List(t *testing.T) {
	repo := memory.NewOrderRepository()
	handler := httpapi.NewOrdersHandler(repo, nil, newTestMetrics(), nil)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/orders?status=new", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []struct {
			ID          int64   `json:"id"`
			TotalAmount float64 `json:"total_amount"`
			Status      string  `json:"status"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
	// total_amount приходит числом, а не строкой.
	assert.Equal(t, float64(1000), resp.Orders[0].TotalAmount)
	assert.Equal(t, "new", resp.Orders[0].Status)

	req = httptest.NewRequest(http.MethodGet, "/orders?status=shipped", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Orders)
}

func TestOrdersHandler_Preflight(t *testing.T) {
	handler := httpapi.NewOrdersHandler(memory.NewOrderRepository(), nil, newTestMetrics(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Empty(t, rec.Body.String())
}

func TestOrdersHandler_MethodNotAllowed(t *testing.T) {
	handler := httpapi.NewOrdersHandler(memory.NewOrderRepository(), nil, newTestMetrics(), nil)

	for _, method := range []string{http.MethodDelete, http.MethodPut, http.MethodPatch} {
		req := httptest.NewRequest(method, "/orders", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Method not allowed", resp["error"])
	}
}
