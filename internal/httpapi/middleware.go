package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const RoleAdmin = "ADMIN"

// Identity is the authenticated caller, resolved from a bearer credential.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// TokenVerifier validates a bearer token and resolves the caller's identity
// and role claim. Token issuance belongs to the external auth provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

var ErrInvalidToken = errors.New("invalid or expired token")

// StaticTokenVerifier maps opaque tokens to identities. Used for local runs
// and tests; production wires a verifier backed by the auth provider.
type StaticTokenVerifier struct {
	Tokens map[string]Identity
}

func (v StaticTokenVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	identity, ok := v.Tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

type contextKey int

const identityKey contextKey = iota

// AuthMiddleware resolves the Authorization header into an Identity.
// Requests without a valid bearer token get 401.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-privileged callers. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())
		if identity == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		if !identity.IsAdmin() {
			respondError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func identityFromContext(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}

// withIdentity is used by handler tests to inject a caller.
func withIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
