package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/services"
)

// UserHandler handles signup, login and the current account.
type UserHandler struct {
	service      services.AuthServiceProvider
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie sets the Secure flag
// on the token cookie.
func NewUserHandler(service services.AuthServiceProvider, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, secureCookie: secureCookie}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for signup requests.
type RegisterPayload struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Sector   models.Sector `json:"sector"`
}

// Register handles new account registration and signs the account in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decode(w, r, &payload) {
		return
	}

	res, err := h.service.Signup(r.Context(), payload.Name, payload.Email, payload.Password, payload.Sector)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register account")
		writeError(w, r, err, "register account")
		return
	}

	auth.SetCookie(w, res.Token, res.Session.ExpiresAt, h.secureCookie)
	writeJSON(w, http.StatusCreated, res)
}

// Login handles authentication and opens a session.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decode(w, r, &payload) {
		return
	}

	res, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, r, err, "log in")
		return
	}

	auth.SetCookie(w, res.Token, res.Session.ExpiresAt, h.secureCookie)
	writeJSON(w, http.StatusOK, res)
}

// Logout ends the current session.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.service.Logout(r.Context(), session.ID); err != nil {
		writeError(w, r, err, "log out")
		return
	}
	auth.ClearCookie(w, h.secureCookie)
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the account snapshot held by the current session.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Account.Sanitized())
}

// Update applies a partial edit to the current account.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}
	var payload services.AccountUpdate
	if !decode(w, r, &payload) {
		return
	}

	account, err := h.service.UpdateAccount(r.Context(), session, payload)
	if err != nil {
		writeError(w, r, err, "update account")
		return
	}
	writeJSON(w, http.StatusOK, account)
}
