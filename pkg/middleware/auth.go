package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kopisahaja/kopisahaja/pkg/auth"
)

type claimsKey struct{}

// Auth requires a valid bearer token and stores the claims on the request
// context for handlers downstream.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := bearerClaims(r)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth attaches claims when a valid token is present but never
// rejects the request. Guest checkout uses this.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := bearerClaims(r); ok {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole wraps Auth and additionally checks the token's role claim.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromCtx(r.Context()) != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"status":403,"message":"Forbidden"}`)) //nolint:errcheck
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func bearerClaims(r *http.Request) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromCtx returns the authenticated token claims, or nil for guests.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// UserIDFromCtx returns the authenticated user id, or 0 for guests.
func UserIDFromCtx(ctx context.Context) uint {
	if claims := ClaimsFromCtx(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

// RoleFromCtx returns the authenticated role, or "" for guests.
func RoleFromCtx(ctx context.Context) string {
	if claims := ClaimsFromCtx(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":401,"message":"Unauthorized"}`)) //nolint:errcheck
}
