package auth

import (
	"context"
	"net/http"

	"ElectroMart/pkg/kit"
)

type ctxKey string

const identityKey ctxKey = "identity"

type Identity struct {
	ID   string
	Role string
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireRole rejects requests without a valid bearer token carrying the
// given role.
func RequireRole(jwt *TokenMaker, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := bearerClaims(jwt, r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing or invalid token", nil)
				return
			}
			if claims.Role != role {
				kit.WriteError(w, r, http.StatusForbidden, "insufficient role", map[string]any{"required": role})
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{ID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
