package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// Claims defines the JWT claims structure. The token only identifies a
// session; everything else is loaded from the session store.
type Claims struct {
	SessionID string `json:"sid"`
	AccountID string `json:"accountId"`
	jwt.RegisteredClaims
}

type contextKey string

const sessionKey = contextKey("session")

// Tokens signs and validates session tokens.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token signer. The secret must not be empty.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Tokens{secret: []byte(secret)}, nil
}

// Generate creates a new JWT for a session.
func (t *Tokens) Generate(session models.Session) (string, error) {
	claims := &Claims{
		SessionID: session.ID,
		AccountID: session.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.AccountID,
			IssuedAt: jwt.NewNumericDate(session.CreatedAt),
		},
	}
	// A zero expiry means the session never expires; exp is omitted.
	if !session.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(session.ExpiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses and validates a JWT string.
func (t *Tokens) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// SessionLoader resolves a session id to the live session, or nil when the
// session has ended.
type SessionLoader interface {
	Current(ctx context.Context, sessionID string) (*models.Session, error)
}

// Middleware protects routes. It resolves token, then session, and passes the
// session down via the request context.
func Middleware(tokens *Tokens, sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			session, err := sessions.Current(r.Context(), claims.SessionID)
			if err != nil {
				log.Error().Err(err).Str("session_id", claims.SessionID).Msg("Failed to load session")
				http.Error(w, "Failed to load session", http.StatusInternalServerError)
				return
			}
			if session == nil || session.AccountID != claims.AccountID {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session placed by Middleware.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}

// SetCookie writes the token cookie.
func SetCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearCookie expires the token cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
