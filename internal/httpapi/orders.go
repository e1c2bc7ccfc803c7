package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
	"github.com/vladislavdragonenkov/partstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/partstore/internal/metrics"
)

const (
	// Без фильтра по статусу список ограничивается последними 100 заказами.
	defaultListLimit = 100
)

// EventPublisher публикует события магазина. Реализуется kafka.Producer;
// nil означает, что события отключены.
type EventPublisher interface {
	PublishEvent(topic string, key string, event any) error
}

// OrdersHandler принимает заказы и отдаёт их список для админки.
type OrdersHandler struct {
	repo    domain.OrderRepository
	events  EventPublisher
	metrics *metrics.IntakeMetrics
	logger  *log.Entry
}

// NewOrdersHandler конструирует обработчик заказов.
func NewOrdersHandler(repo domain.OrderRepository, events EventPublisher, m *metrics.IntakeMetrics, logger *log.Entry) *OrdersHandler {
	if logger == nil {
		logger = log.WithField("component", "orders-handler")
	}
	return &OrdersHandler{
		repo:    repo,
		events:  events,
		metrics: m,
		logger:  logger,
	}
}

func (h *OrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		writePreflight(w)
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type orderResponse struct {
	ID              int64     `json:"id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email"`
	DeliveryAddress string    `json:"delivery_address"`
	DeliveryMethod  string    `json:"delivery_method"`
	PaymentMethod   string    `json:"payment_method"`
	TotalAmount     money     `json:"total_amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (h *OrdersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	limit := 0
	if status == "" {
		limit = defaultListLimit
	}

	orders, err := h.repo.List(r.Context(), status, limit)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).
			Error("failed to list orders")
		writeError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	payload := lo.Map(orders, func(o domain.Order, _ int) orderResponse {
		return orderResponse{
			ID:              o.ID,
			CustomerName:    o.CustomerName,
			CustomerPhone:   o.CustomerPhone,
			CustomerEmail:   o.CustomerEmail,
			DeliveryAddress: o.DeliveryAddress,
			DeliveryMethod:  o.DeliveryMethod,
			PaymentMethod:   o.PaymentMethod,
			TotalAmount:     money{o.TotalAmount},
			Status:          string(o.Status),
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
	})

	writeJSON(w, http.StatusOK, map[string]any{"orders": payload})
}

func (h *OrdersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, fieldErrs, err := decodeCreateOrderRequest(r.Body)
	if err != nil {
		h.metrics.ValidationFailed()
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Структурные ошибки типа поля отсекаются до семантической валидации.
	if len(fieldErrs) == 0 {
		fieldErrs = req.Validate()
	}
	if len(fieldErrs) > 0 {
		h.metrics.ValidationFailed()
		writeValidationError(w, fieldErrs)
		return
	}

	order, err := req.Order()
	if err != nil {
		h.metrics.ValidationFailed()
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	orderID, err := h.repo.Create(r.Context(), order)
	if err != nil {
		h.metrics.StorageFailed()
		// Текст ошибки драйвера клиенту не отдаётся.
		h.logger.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).
			Error("failed to save order")
		writeError(w, http.StatusInternalServerError, "failed to save order")
		return
	}
	h.metrics.OrderCreated()

	h.publishOrderCreated(orderID, order)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"order_id": orderID,
	})
}

// publishOrderCreated отправляет событие после коммита. Ошибка публикации
// не отменяет уже сохранённый заказ: доставка событий — best effort.
func (h *OrdersHandler) publishOrderCreated(orderID int64, order domain.Order) {
	if h.events == nil {
		return
	}

	event := kafka.NewOrderCreatedEvent(
		orderID,
		string(order.Status),
		order.TotalAmount.String(),
		len(order.Items),
	)
	if err := h.events.PublishEvent(kafka.TopicOrderEvents, fmt.Sprintf("%d", orderID), event); err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).
			Warn("failed to publish order.created event")
	}
}

// decodeCreateOrderRequest разбирает тело запроса. Ошибка типа конкретного
// поля (например, дробное quantity) возвращается как FieldError,
// нечитаемый JSON — как обычная ошибка.
func decodeCreateOrderRequest(r io.Reader) (domain.CreateOrderRequest, []domain.FieldError, error) {
	var req domain.CreateOrderRequest

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return req, []domain.FieldError{{
				Field: typeErr.Field,
				Err:   fmt.Errorf("unexpected %s", typeErr.Value),
			}}, nil
		}
		return req, nil, fmt.Errorf("decode order request: %w", err)
	}

	return req, nil, nil
}
