package httpapi

import (
	"net/http"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
	"github.com/vladislavdragonenkov/partstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/partstore/internal/metrics"
)

const (
	catalogListLimit = 100

	placeholderImage = "/placeholder.svg"
)

// ProductsHandler отдаёт каталог автозапчастей и запускает синхронизацию
// цен и остатков с фидами поставщиков.
type ProductsHandler struct {
	repo    domain.ProductRepository
	events  EventPublisher
	metrics *metrics.IntakeMetrics
	logger  *log.Entry
}

// NewProductsHandler конструирует обработчик каталога.
func NewProductsHandler(repo domain.ProductRepository, events EventPublisher, m *metrics.IntakeMetrics, logger *log.Entry) *ProductsHandler {
	if logger == nil {
		logger = log.WithField("component", "products-handler")
	}
	return &ProductsHandler{
		repo:    repo,
		events:  events,
		metrics: m,
		logger:  logger,
	}
}

func (h *ProductsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		writePreflight(w)
	case http.MethodGet:
		h.handleSearch(w, r)
	case http.MethodPost:
		h.handleSync(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type productResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Article      string `json:"article"`
	Category     string `json:"category"`
	Price        money  `json:"price"`
	InStock      bool   `json:"inStock"`
	Quantity     int32  `json:"quantity"`
	Image        string `json:"image"`
	Manufacturer string `json:"manufacturer"`
	Supplier     string `json:"supplier"`
}

func (h *ProductsHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	products, err := h.repo.Search(r.Context(), filter, catalogListLimit)
	if err != nil {
		h.logger.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).
			Error("failed to search products")
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	payload := lo.Map(products, func(p domain.Product, _ int) productResponse {
		image := p.ImageURL
		if image == "" {
			image = placeholderImage
		}
		return productResponse{
			ID:           p.ID,
			Name:         p.Name,
			Article:      p.Article,
			Category:     p.Category,
			Price:        money{p.Price},
			InStock:      p.InStock,
			Quantity:     p.Quantity,
			Image:        image,
			Manufacturer: p.Manufacturer,
			Supplier:     p.Supplier,
		}
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"products": payload,
		"count":    len(payload),
	})
}

func (h *ProductsHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	updated, err := h.repo.SyncFromSuppliers(r.Context())
	if err != nil {
		h.logger.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).
			Error("supplier sync failed")
		writeError(w, http.StatusInternalServerError, "catalog sync failed")
		return
	}
	h.metrics.CatalogSynced()

	if h.events != nil {
		event := kafka.NewCatalogSyncedEvent(updated)
		if err := h.events.PublishEvent(kafka.TopicCatalogEvents, "catalog", event); err != nil {
			h.logger.WithError(err).Warn("failed to publish catalog.synced event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Синхронизация завершена успешно",
		"updated":   updated,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
