/**
 * @description
 * This file contains the identity-resolution middleware for the HTTP router.
 * The bearer token, when present, is verified once per request and resolved
 * into a domain.Identity stored on the request context. A missing header
 * leaves the request unauthenticated (individual operations decide whether
 * identity is required), while a present-but-invalid token is rejected
 * outright.
 */

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/BIGSAMOFAFRICA/BANKAPP/internal/domain"
)

// identityContextKey is a custom type for the context key to avoid collisions.
type identityContextKey struct{}

// TokenVerifier resolves a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(tokenString string) (*domain.Identity, error)
}

// ResolveIdentity returns middleware that resolves an optional bearer token.
// Identity resolution happens here, once, before any store access.
func ResolveIdentity(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			identity, err := verifier.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the resolved caller identity from the request
// context. Returns nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityContextKey{}).(*domain.Identity)
	return identity
}
