package handlers

import (
	"context"
	"net/http"
	"strings"

	"agenda-service/libs/auth"
)

type ctxKey int

const ctxKeyClaims ctxKey = iota

func claimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return c
}

// bearerClaims resolves an optional Authorization header. No header is the
// walk-in case (nil claims, no error); a header that fails verification is
// an error, not a silent downgrade to anonymous.
func bearerClaims(r *http.Request, verifier *auth.Verifier) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return verifier.Verify(token)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims on the request context.
func RequireAuth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := bearerClaims(r, verifier)
			if err != nil || claims == nil {
				writeError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff additionally checks the staff/admin role claim.
func RequireStaff(verifier *auth.Verifier) func(http.Handler) http.Handler {
	requireAuth := RequireAuth(verifier)
	return func(next http.Handler) http.Handler {
		return requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || (claims.Role != "staff" && claims.Role != "admin") {
				writeError(w, http.StatusForbidden, "staff access required")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
