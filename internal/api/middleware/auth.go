package middleware

import (
	"context"
	"net/http"

	"camp_photos/internal/domain/model"
	"camp_photos/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// Authenticator resolves the bearer token (already decoded by
// jwtauth.Verifier earlier in the chain) into an Identity. It never rejects
// a request: a missing header, malformed token, bad signature, expired
// token, or a subject that no longer exists all leave the request anonymous.
// Rejection is entirely the policy's job downstream.
func Authenticator(userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := model.Anonymous()

			token, claims, err := jwtauth.FromContext(r.Context())
			if err == nil && token != nil {
				if sub, ok := claims["sub"].(string); ok && sub != "" {
					// Liveness check: the subject must still resolve to a
					// stored user.
					if user, findErr := userRepo.FindByUsername(r.Context(), sub); findErr == nil {
						ident = model.Authenticated(user)
					}
				}
			}

			ctx := context.WithValue(r.Context(), identityCtxKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the request's identity, anonymous if the
// authenticator never ran.
func IdentityFromContext(ctx context.Context) model.Identity {
	if ident, ok := ctx.Value(identityCtxKey).(model.Identity); ok {
		return ident
	}
	return model.Anonymous()
}
