package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"paygate/infra/response"
	"paygate/provider"
)

// PaymentHandler handles checkout HTTP requests
type PaymentHandler struct {
	service  *provider.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *provider.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validate,
	}
}

// ProcessPayment handles POST /v1/pay/{provider}: it validates the order and
// hands it to the configured adapter, returning the adapter's PayResult
// (redirect URL, QR code, or direct settlement).
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var order provider.PaymentOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if order.ClientIP == "" {
		order.ClientIP = clientIP(r)
	}

	if err := h.validate.Struct(order); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := chi.URLParam(r, "provider")

	result, err := h.service.Pay(ctx, providerName, order)
	if err != nil {
		response.Error(w, statusForError(err), "Payment failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment created", result)
}

// statusForError maps the gateway error taxonomy to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, provider.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrProviderRejected):
		return http.StatusPaymentRequired
	case errors.Is(err, provider.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, provider.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientIP extracts the caller address, honoring forwarding proxies
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}
