package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tallyapp/tally/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// IdentityKey is the context key for storing the authenticated editor identity.
	IdentityKey contextKey = "identity"
	// RequestIDKey is the context key for storing the request ID.
	RequestIDKey contextKey = "request_id"
)

// GetIdentity extracts the editor identity from the context.
// Returns empty string if not found.
func GetIdentity(ctx context.Context) string {
	identity, _ := ctx.Value(IdentityKey).(string)
	return identity
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// RequireEditor returns middleware that guards mutating routes.
// It validates the Bearer session token and then consults the access gate;
// both must agree before a mutation proceeds. Read-only routes are never
// wrapped with this, so view-only mode keeps working without a token.
func RequireEditor(jwtManager *auth.JWTManager, gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeAuthError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			// A valid token is not enough once the operator has signed
			// out: the gate is the authorization boundary.
			if !gate.CanMutate() {
				writeAuthError(w, http.StatusForbidden, "view-only mode")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, claims.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
