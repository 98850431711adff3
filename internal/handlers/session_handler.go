package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Valency12/el-xolito-storefront/internal/session"
)

// SessionHandler exposes login/register/logout to the UI.
type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	Phone           string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/session/register
// Validation failures come back as 422 with the message the form shows
// inline; no backend call has happened at that point.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	user, err := h.sessions.Register(r.Context(), session.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
		Phone:           req.Phone,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), h.logger)
			return
		}
		h.logger.Warn("registration failed", "error", err)
		writeError(w, http.StatusBadGateway, "Registration is unavailable right now", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, user, h.logger)
}

// Login handles POST /api/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), h.logger)
			return
		}
		h.logger.Warn("login failed", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid credentials", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user, h.logger)
}

// Logout handles POST /api/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true}, h.logger)
}

// Me handles GET /api/session/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.CurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			writeError(w, http.StatusUnauthorized, "Not logged in", h.logger)
			return
		}
		h.logger.Warn("current user lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "Session check is unavailable right now", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user, h.logger)
}

func isValidationError(err error) bool {
	return errors.Is(err, session.ErrInvalidEmail) ||
		errors.Is(err, session.ErrWeakPassword) ||
		errors.Is(err, session.ErrPasswordMismatch) ||
		errors.Is(err, session.ErrMissingName)
}
