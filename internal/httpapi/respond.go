package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
)

// money сериализуется в JSON как число без кавычек: фронтенд ожидает
// total_amount и price числами, а не строками.
type money struct {
	decimal.Decimal
}

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error   string               `json:"error"`
	Details []fieldErrorResponse `json:"details"`
}

// writePreflight отвечает на CORS preflight. Ядро при этом не вызывается.
func writePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id, X-Auth-Token")
	h.Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidationError перечисляет все нарушенные ограничения,
// чтобы клиент мог исправить запрос за один заход.
func writeValidationError(w http.ResponseWriter, errs []domain.FieldError) {
	details := lo.Map(errs, func(fe domain.FieldError, _ int) fieldErrorResponse {
		return fieldErrorResponse{Field: fe.Field, Message: fe.Err.Error()}
	})
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "validation failed",
		Details: details,
	})
}
