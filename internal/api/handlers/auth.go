package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-flow/internal/api/middleware"
)

// AuthHandler handles the admin login endpoint.
type AuthHandler struct {
	username string
	password string
	token    string
	log      zerolog.Logger
}

// NewAuthHandler creates a new auth handler. token is the bearer token handed
// to the dashboard after a successful login.
func NewAuthHandler(username, password, token string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		username: username,
		password: password,
		token:    token,
		log:      log,
	}
}

// HandleLogin handles POST /api/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.log.Warn().Str("username", req.Username).Msg("Failed login attempt")
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"token": h.token})
}
