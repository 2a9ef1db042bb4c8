package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
)

// AccountServiceProvider defines the interface for the account registry.
type AccountServiceProvider interface {
	CreateAccount(ctx context.Context, name, email, password string, sector models.Sector) (models.Account, error)
	Authenticate(ctx context.Context, email, password string) (models.Account, error)
	GetAccount(ctx context.Context, id string) (models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) (models.Account, error)
}

// AccountService is the registry of accounts keyed by id, with a unique email index.
type AccountService struct {
	store  storage.Store
	hasher auth.PasswordHasher
	// mu serializes writes so the email index stays unique.
	mu  sync.Mutex
	now func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Store, hasher auth.PasswordHasher) *AccountService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &AccountService{store: store, hasher: hasher, now: time.Now}
}

type signupInput struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

// NormalizeEmail trims and lower-cases an email before it is used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers a new account, hashing the password.
func (s *AccountService) CreateAccount(ctx context.Context, name, email, password string, sector models.Sector) (models.Account, error) {
	in := signupInput{Name: strings.TrimSpace(name), Email: NormalizeEmail(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if sector == "" {
		sector = models.SectorHealthcare
	}
	if !sector.Valid() {
		return models.Account{}, fmt.Errorf("%w: unknown sector %q", ErrInvalidInput, sector)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.idForEmail(ctx, in.Email); err == nil {
		return models.Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, err
	}

	now := s.now().UTC()
	account := models.Account{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Sector:       sector,
		Skills:       []string{},
		Roadmaps:     []models.RoadmapResult{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := storage.PutJSON(ctx, s.store, storage.AccountKey(account.ID), account); err != nil {
		return models.Account{}, err
	}
	if err := storage.PutJSON(ctx, s.store, storage.AccountEmailKey(account.Email), account.ID); err != nil {
		return models.Account{}, err
	}
	return account.Sanitized(), nil
}

// Authenticate verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.Account, error) {
	id, err := s.idForEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, err
	}
	account, err := s.load(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, err
	}
	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return account.Sanitized(), nil
}

// GetAccount retrieves a single account by its ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (models.Account, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	return account.Sanitized(), nil
}

// UpdateAccount merges the mutable profile fields of account into the stored
// record with the same id. Email and credentials are never changed here.
func (s *AccountService) UpdateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load(ctx, account.ID)
	if err != nil {
		return models.Account{}, err
	}
	if name := strings.TrimSpace(account.Name); name != "" {
		stored.Name = name
	}
	if account.Sector != "" {
		if !account.Sector.Valid() {
			return models.Account{}, fmt.Errorf("%w: unknown sector %q", ErrInvalidInput, account.Sector)
		}
		stored.Sector = account.Sector
	}
	if account.Skills != nil {
		stored.Skills = uniqueSkills(account.Skills)
	}
	if account.AssessmentScore != nil {
		score := *account.AssessmentScore
		stored.AssessmentScore = &score
	}
	if account.Roadmaps != nil {
		stored.Roadmaps = account.Roadmaps
	}
	stored.UpdatedAt = s.now().UTC()

	if err := storage.PutJSON(ctx, s.store, storage.AccountKey(stored.ID), stored); err != nil {
		return models.Account{}, err
	}
	return stored.Sanitized(), nil
}

func (s *AccountService) load(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	if err := storage.GetJSON(ctx, s.store, storage.AccountKey(id), &account); err != nil {
		return models.Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	return account, nil
}

func (s *AccountService) idForEmail(ctx context.Context, email string) (string, error) {
	var id string
	if err := storage.GetJSON(ctx, s.store, storage.AccountEmailKey(email), &id); err != nil {
		return "", err
	}
	return id, nil
}

// uniqueSkills trims skills and drops blanks and repeats, keeping first-seen order.
func uniqueSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		out = append(out, skill)
	}
	return out
}
