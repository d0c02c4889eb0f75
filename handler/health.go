package handler

import (
	"net/http"
	"time"

	"paygate/infra/response"
	"paygate/provider"
)

// HealthHandler reports service liveness
type HealthHandler struct {
	service *provider.PaymentService
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *provider.PaymentService) *HealthHandler {
	return &HealthHandler{
		service: service,
		started: time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"providers": h.service.ProviderNames(),
	}
	response.Success(w, http.StatusOK, "healthy", data)
}
