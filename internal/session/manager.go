// Package session manages the authenticated user: registration, login,
// logout and the persisted token pair. Validation failures are caught before
// any network call and surfaced as typed errors the UI can show inline.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Valency12/el-xolito-storefront/internal/backend"
	"github.com/Valency12/el-xolito-storefront/internal/storage"
)

const minPasswordLength = 8

var (
	ErrInvalidEmail     = errors.New("email address is not valid")
	ErrWeakPassword     = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingName      = errors.New("full name is required")
	// ErrNotLoggedIn is returned by authenticated operations when no
	// session is stored.
	ErrNotLoggedIn = errors.New("not logged in")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the canonical user record, mapped from the backend shape.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
}

func userFromBackend(dto backend.UserDTO) User {
	return User{
		ID:       dto.ID,
		Email:    dto.Email,
		FullName: dto.NombreCompleto,
		Phone:    dto.Telefono,
	}
}

// RegisterInput is the data collected by the registration form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Phone           string
}

// Validate checks the input locally. It runs before any network call so a
// typo never costs a round trip.
func (in RegisterInput) Validate() error {
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		return ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if strings.TrimSpace(in.FullName) == "" {
		return ErrMissingName
	}
	return nil
}

// AuthAPI is the slice of the backend client the manager needs.
type AuthAPI interface {
	Register(ctx context.Context, req backend.RegisterRequest) (backend.AuthResponse, error)
	Login(ctx context.Context, email, password string) (backend.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (backend.UserDTO, error)
}

// Manager owns the session lifecycle over the backend auth endpoints and the
// persisted store.
type Manager struct {
	api    AuthAPI
	store  storage.Store
	logger *slog.Logger
}

// NewManager creates a session manager.
func NewManager(api AuthAPI, store storage.Store, logger *slog.Logger) *Manager {
	return &Manager{api: api, store: store, logger: logger}
}

// Register validates the input, creates the account and stores the session.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := in.Validate(); err != nil {
		return User{}, err
	}

	resp, err := m.api.Register(ctx, backend.RegisterRequest{
		Email:          strings.TrimSpace(in.Email),
		Password:       in.Password,
		NombreCompleto: strings.TrimSpace(in.FullName),
		Telefono:       strings.TrimSpace(in.Phone),
	})
	if err != nil {
		return User{}, fmt.Errorf("registration failed: %w", err)
	}

	return m.storeSession(resp)
}

// Login authenticates and stores the session.
func (m *Manager) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return User{}, ErrInvalidEmail
	}
	if password == "" {
		return User{}, ErrWeakPassword
	}

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return User{}, fmt.Errorf("login failed: %w", err)
	}

	return m.storeSession(resp)
}

// Logout tells the backend to invalidate the session and clears the stored
// keys. The local clear happens even when the backend call fails; a dead
// backend must not trap the user in a logged-in state.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("backend logout failed, clearing local session anyway", "error", err)
	}
	NewTokens(m.store, m.logger).ClearSession()
}

// CurrentUser returns the authenticated user, consulting the backend. The
// underlying client performs the single silent refresh-and-retry on 401; if
// that fails the session is already cleared and ErrNotLoggedIn is returned.
func (m *Manager) CurrentUser(ctx context.Context) (User, error) {
	if _, ok := m.store.Get(storage.KeyAccessToken); !ok {
		return User{}, ErrNotLoggedIn
	}

	dto, err := m.api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return User{}, ErrNotLoggedIn
		}
		return User{}, fmt.Errorf("failed to fetch current user: %w", err)
	}

	user := userFromBackend(dto)
	m.persistUser(user)
	return user, nil
}

// StoredUser returns the locally persisted user record without a network
// call, for rendering the header while the /auth/me check is in flight.
func (m *Manager) StoredUser() (User, bool) {
	raw, ok := m.store.Get(storage.KeyCurrentUser)
	if !ok || raw == "" {
		return User{}, false
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("discarding unreadable stored user", "error", err)
		return User{}, false
	}
	return user, true
}

func (m *Manager) storeSession(resp backend.AuthResponse) (User, error) {
	if err := m.store.Set(storage.KeyAccessToken, resp.AccessToken); err != nil {
		return User{}, fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := m.store.Set(storage.KeyRefreshToken, resp.RefreshToken); err != nil {
		return User{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	user := userFromBackend(resp.User)
	m.persistUser(user)
	return user, nil
}

func (m *Manager) persistUser(user User) {
	data, err := json.Marshal(user)
	if err != nil {
		m.logger.Warn("failed to encode user record", "error", err)
		return
	}
	if err := m.store.Set(storage.KeyCurrentUser, string(data)); err != nil {
		m.logger.Warn("failed to persist user record", "error", err)
	}
}
