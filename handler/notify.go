package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"paygate/infra/logger"
	"paygate/infra/response"
	"paygate/provider"
)

// maxNotifyBody caps inbound callback bodies
const maxNotifyBody = 1 << 20

// Settler is the external order collaborator that marks an order paid once a
// callback has been verified. Idempotency across repeated provider retries is
// the settler's responsibility, not the gateway layer's.
type Settler interface {
	MarkPaid(ctx context.Context, tradeNo, callbackNo string) error
}

// NotifyHandler dispatches inbound provider callbacks to the gateway layer.
// The raw body and the signature headers are handed through unmodified;
// several providers sign the exact wire bytes.
type NotifyHandler struct {
	service *provider.PaymentService
	settler Settler
}

// NewNotifyHandler creates a new notify handler. settler may be nil when the
// service runs as a pure verification gateway.
func NewNotifyHandler(service *provider.PaymentService, settler Settler) *NotifyHandler {
	return &NotifyHandler{
		service: service,
		settler: settler,
	}
}

// HandleNotify handles POST /v1/notify/{provider}. Verification failures are
// answered only with the provider's expected failure ack; no detail about the
// check is leaked to the caller.
func (h *NotifyHandler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxNotifyBody))
	if err != nil {
		h.writeAck(w, providerName, false)
		return
	}

	req := provider.NotifyRequest{
		Body:   body,
		Params: collectParams(r, body),
		Headers: map[string]string{
			"Stripe-Signature": r.Header.Get("Stripe-Signature"),
		},
	}

	result, err := h.service.Notify(r.Context(), providerName, req)
	if err != nil {
		logger.Warn("Callback not processable", logger.LogContext{
			Provider: providerName,
			Fields:   map[string]any{"error": err.Error()},
		})
		h.writeAck(w, providerName, false)
		return
	}
	if !result.OK {
		h.writeAck(w, providerName, false)
		return
	}

	if h.settler != nil {
		if err := h.settler.MarkPaid(r.Context(), result.TradeNo, result.CallbackNo); err != nil {
			logger.Error("Failed to settle verified payment", err, logger.LogContext{
				Provider: providerName,
				Fields:   map[string]any{"tradeNo": result.TradeNo},
			})
			// failure ack so the provider retries the delivery
			h.writeAck(w, providerName, false)
			return
		}
	}

	h.writeAck(w, providerName, true)
}

// collectParams merges query parameters and a form-encoded body into the flat
// parameter map signed-parameter providers verify against. The body is parsed
// from its own copy so the raw bytes stay intact for raw-body schemes.
func collectParams(r *http.Request, body []byte) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if form, err := url.ParseQuery(string(body)); err == nil {
			for key, values := range form {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
		}
	}
	return params
}

// writeAck answers a callback in the format the provider expects
func (h *NotifyHandler) writeAck(w http.ResponseWriter, providerName string, ok bool) {
	switch providerName {
	case "wechat":
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		if ok {
			_, _ = w.Write([]byte("<xml><return_code><![CDATA[SUCCESS]]></return_code><return_msg><![CDATA[OK]]></return_msg></xml>"))
		} else {
			_, _ = w.Write([]byte("<xml><return_code><![CDATA[FAIL]]></return_code><return_msg><![CDATA[invalid notify]]></return_msg></xml>"))
		}
	case "alipay":
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if ok {
			_, _ = w.Write([]byte("success"))
		} else {
			_, _ = w.Write([]byte("fail"))
		}
	default:
		if ok {
			response.Success(w, http.StatusOK, "Callback accepted", nil)
		} else {
			response.Error(w, http.StatusBadRequest, "Callback rejected", errors.New("rejected"))
		}
	}
}
