package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/api/middleware"
	"github.com/dvloznov/expense-flow/internal/store"
)

// SettingsStore is the subset of the record store the settings endpoints need.
type SettingsStore interface {
	SaveSettings(cfg *store.EvolutionSettings) error
	LoadSettings() (*store.EvolutionSettings, error)
}

// SettingsHandler handles the WhatsApp gateway settings endpoints.
type SettingsHandler struct {
	store SettingsStore
	log   zerolog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store SettingsStore, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		store: store,
		log:   log,
	}
}

// GetSettings handles GET /api/settings. The token is masked so the admin
// panel never echoes the stored secret back.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.LoadSettings()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	cfg.Token = maskToken(cfg.Token)
	middleware.WriteJSON(w, http.StatusOK, cfg)
}

// UpdateSettings handles PUT /api/settings.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg store.EvolutionSettings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SaveSettings(&cfg); err != nil {
		h.log.Error().Err(err).Msg("Failed to save settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	h.log.Info().Str("base_url", cfg.BaseURL).Str("instance", cfg.InstanceName).Msg("Settings updated")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// maskToken keeps the last four characters visible.
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
