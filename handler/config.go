package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paygate/infra/config"
	"paygate/infra/response"
	"paygate/provider"
)

// ConfigHandler exposes the admin configuration surface: the per-provider
// form descriptors and the gateway configuration store.
type ConfigHandler struct {
	service *provider.PaymentService
	store   *config.GatewayStore
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(service *provider.PaymentService, store *config.GatewayStore) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		store:   store,
	}
}

// GetProviders handles GET /v1/providers
func (h *ConfigHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"registered": provider.DefaultRegistry.Names(),
		"configured": h.service.ProviderNames(),
	}
	response.Success(w, http.StatusOK, "Providers", data)
}

// GetForm handles GET /v1/config/{provider}/form: it returns the ordered
// configuration field schema the admin UI renders.
func (h *ConfigHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	fields, err := h.service.FormFields(providerName)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Unknown provider", err)
		return
	}
	response.Success(w, http.StatusOK, "Configuration form", fields)
}

// SetConfig handles POST /v1/config/{provider}: the configuration is bound to
// a fresh adapter first, so an unusable configuration is rejected before it
// is persisted.
func (h *ConfigHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	var conf map[string]string
	if err := json.NewDecoder(r.Body).Decode(&conf); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.service.AddProvider(providerName, conf); err != nil {
		response.Error(w, statusForError(err), "Configuration rejected", err)
		return
	}

	if err := h.store.SetConfig(providerName, conf); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to persist configuration", err)
		return
	}

	response.Success(w, http.StatusOK, "Configuration saved", nil)
}

// DeleteConfig handles DELETE /v1/config/{provider}
func (h *ConfigHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	if err := h.store.DeleteConfig(providerName); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to delete configuration", err)
		return
	}
	h.service.RemoveProvider(providerName)

	response.Success(w, http.StatusOK, "Configuration deleted", nil)
}
