package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/forgo/handy/api/internal/model"
	"github.com/forgo/handy/api/pkg/jwt"
)

// AuthService verifies a bearer token and returns its claims
type AuthService interface {
	Validate(token string) (*jwt.Claims, error)
}

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"
	// UserEmailKey is the context key for the authenticated email
	UserEmailKey contextKey = "userEmail"
)

// bearerToken pulls the token out of the Authorization header. The
// second return is false when the header is absent or not Bearer-shaped.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// Auth rejects requests that do not carry a valid bearer token. The
// external identity and email from the claims are placed in the request
// context for handlers.
func Auth(authService AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if r.Header.Get("Authorization") == "" {
					model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				} else {
					model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				}
				return
			}

			claims, err := authService.Validate(token)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					model.NewUnauthorizedError("token expired").WriteJSON(w)
				case errors.Is(err, jwt.ErrInvalidSignature):
					model.NewUnauthorizedError("invalid token signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid token").WriteJSON(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present but never
// rejects. Catalog reads use this: a signed-in caller's identity is
// available to handlers, anonymous traffic passes through untouched.
func OptionalAuth(authService AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// GetUserID extracts the authenticated external identity from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserEmail extracts the authenticated email from context
func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// GetClaims extracts the full token claims from context
func GetClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
