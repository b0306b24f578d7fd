package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careerpilot/insights/internal/domain"
)

type userKey struct{}

// UserFrom returns the authenticated user id stored in the request context.
func UserFrom(ctx context.Context) string {
	if v := ctx.Value(userKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ContextWithUser stores a user id in the context. Exposed for tests.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// Auth resolves the caller identity for every API request.
//
// When a JWT secret is configured the middleware requires a Bearer token
// signed with HS256 and takes the user id from the `sub` claim. Without a
// secret (local development) the identity comes from the X-User-Id header.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveUser(r, jwtSecret)
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID)))
		})
	}
}

func resolveUser(r *http.Request, jwtSecret string) (string, error) {
	if jwtSecret == "" {
		userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if userID == "" {
			return "", fmt.Errorf("missing X-User-Id header: %w", domain.ErrUnauthorized)
		}
		return userID, nil
	}
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("missing bearer token: %w", domain.ErrUnauthorized)
	}
	tok, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return sub, nil
}
