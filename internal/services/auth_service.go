package services

import (
	"context"
	"fmt"

	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/models"
)

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"-"`
	Account models.Account `json:"account"`
}

// AccountUpdate carries the profile fields a user may edit directly.
type AccountUpdate struct {
	Name   *string        `json:"name" validate:"omitempty,min=1,max=120"`
	Sector *models.Sector `json:"sector"`
	Skills []string       `json:"skills" validate:"omitempty,dive,required"`
}

// AuthServiceProvider defines the interface for the signup/login flow.
type AuthServiceProvider interface {
	Signup(ctx context.Context, name, email, password string, sector models.Sector) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	UpdateAccount(ctx context.Context, session *models.Session, update AccountUpdate) (models.Account, error)
}

// AuthService composes the account registry and the session store. Every
// account change it makes is written through to the caller's sessions.
type AuthService struct {
	accounts AccountServiceProvider
	sessions SessionServiceProvider
	tokens   *auth.Tokens
	events   EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts AccountServiceProvider, sessions SessionServiceProvider, tokens *auth.Tokens, events EventServiceProvider) *AuthService {
	return &AuthService{accounts: accounts, sessions: sessions, tokens: tokens, events: events}
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string, sector models.Sector) (AuthResult, error) {
	account, err := s.accounts.CreateAccount(ctx, name, email, password, sector)
	if err != nil {
		return AuthResult{}, err
	}
	recordEvent(ctx, s.events, account.ID, EventAccountCreated, "info", "Account created")
	return s.open(ctx, account)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}
	recordEvent(ctx, s.events, account.ID, EventAccountLogin, "info", "Signed in")
	return s.open(ctx, account)
}

func (s *AuthService) open(ctx context.Context, account models.Account) (AuthResult, error) {
	session, err := s.sessions.Open(ctx, account)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to open session: %w", err)
	}
	token, err := s.tokens.Generate(session)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return AuthResult{Token: token, Session: session, Account: account}, nil
}

// Logout clears the session. The account record is untouched.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

// UpdateAccount applies a partial profile edit and refreshes every session
// of the account.
func (s *AuthService) UpdateAccount(ctx context.Context, session *models.Session, update AccountUpdate) (models.Account, error) {
	if err := validate.Struct(update); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	patch := models.Account{ID: session.AccountID, Skills: update.Skills}
	if update.Name != nil {
		patch.Name = *update.Name
	}
	if update.Sector != nil {
		patch.Sector = *update.Sector
	}

	account, err := s.accounts.UpdateAccount(ctx, patch)
	if err != nil {
		return models.Account{}, err
	}
	if err := s.sessions.RefreshAccount(ctx, account); err != nil {
		return models.Account{}, fmt.Errorf("failed to refresh sessions: %w", err)
	}
	recordEvent(ctx, s.events, account.ID, EventAccountUpdated, "info", "Profile updated")
	return account, nil
}
