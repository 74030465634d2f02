package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"pbi-rag/internal/config"
)

type principalKey struct{}

// WithPrincipal stores the authenticated caller identity in the context.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// PrincipalFromContext extracts the caller identity from the context.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalKey{}).(string)
	return name, ok
}

// Auth returns the middleware for the configured auth mode:
//
//	none:        every request passes, principal "anonymous"
//	token:       static bearer token, compared in constant time
//	hs256, oidc: bearer JWT checked by the validator, principal = subject
//
// Anything that fails the active mode gets 401.
func Auth(cfg *config.Config, validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch cfg.AuthMode {
			case config.AuthModeNone:
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), "anonymous")))
				return

			case config.AuthModeToken:
				token, ok := bearerToken(r)
				if ok && subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIToken)) == 1 {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), "api-token")))
					return
				}

			case config.AuthModeHS256, config.AuthModeOIDC:
				if token, ok := bearerToken(r); ok && validator != nil {
					claims, err := validator.Validate(r.Context(), token)
					if err == nil && claims.Subject != "" {
						next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Subject)))
						return
					}
				}
			}

			writeUnauthorized(w)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": "unauthorized: provide a valid bearer credential",
		"code":  "UNAUTHORIZED",
	})
}
