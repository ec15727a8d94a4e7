package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"example.com/mastermind/internal/auth"
)

// TokenHandler exchanges API client credentials for a bearer token.
type TokenHandler struct {
	Clients  auth.Clients
	Auth     *auth.Service
	TokenTTL time.Duration
	Log      *slog.Logger
}

type TokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}

func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)

	if req.ClientID == "" || req.ClientSecret == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "clientId and clientSecret are required")
		return
	}

	if err := h.Clients.Authenticate(req.ClientID, req.ClientSecret); err != nil {
		if h.Log != nil && !errors.Is(err, auth.ErrBadCredentials) {
			h.Log.Info("token request for unknown client", "client", req.ClientID, "request_id", RequestIDFromContext(r.Context()))
		}
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid client id or secret")
		return
	}

	token, err := h.Auth.Sign(req.ClientID, h.TokenTTL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token, ExpiresIn: int64(h.TokenTTL / time.Second)})
}
