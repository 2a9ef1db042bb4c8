package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/stratum-be/internal/models"
)

type stubSessions map[string]*models.Session

func (s stubSessions) Current(_ context.Context, id string) (*models.Session, error) {
	return s[id], nil
}

func newSession(id, accountID string, ttl time.Duration) models.Session {
	now := time.Now()
	return models.Session{ID: id, AccountID: accountID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret")
	require.NoError(t, err)

	token, err := tokens.Generate(newSession("s1", "a1", time.Hour))
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "a1", claims.AccountID)
}

func TestTokensForSessionWithoutExpiry(t *testing.T) {
	tokens, err := NewTokens("secret")
	require.NoError(t, err)

	session := models.Session{ID: "s1", AccountID: "a1", CreatedAt: time.Now()}
	require.False(t, session.Expired(time.Now()))

	token, err := tokens.Generate(session)
	require.NoError(t, err)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestTokensRejectForeignAndExpired(t *testing.T) {
	tokens, _ := NewTokens("secret")
	other, _ := NewTokens("other")

	foreign, err := other.Generate(newSession("s1", "a1", time.Hour))
	require.NoError(t, err)
	_, err = tokens.Validate(foreign)
	assert.Error(t, err)

	expired, err := tokens.Generate(newSession("s1", "a1", -time.Minute))
	require.NoError(t, err)
	_, err = tokens.Validate(expired)
	assert.Error(t, err)

	_, err = NewTokens("")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	tokens, _ := NewTokens("secret")
	live := newSession("s1", "a1", time.Hour)
	sessions := stubSessions{"s1": &live}

	var seen *models.Session
	handler := Middleware(tokens, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	liveToken, _ := tokens.Generate(live)
	endedToken, _ := tokens.Generate(newSession("gone", "a1", time.Hour))
	mismatched, _ := tokens.Generate(newSession("s1", "a2", time.Hour))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+liveToken) }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: liveToken}) }, http.StatusNoContent},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"logged out", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+endedToken) }, http.StatusUnauthorized},
		{"account mismatch", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+mismatched) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "a1", seen.AccountID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "wrong"))
}
