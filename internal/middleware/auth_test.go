package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbi-rag/internal/config"
)

func authHandler(t *testing.T, cfg *config.Config, validator JWTValidator) (http.Handler, *string) {
	t.Helper()
	var principal string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(cfg, validator)(next), &principal
}

func TestAuth_ModeNone(t *testing.T) {
	handler, principal := authHandler(t, &config.Config{AuthMode: config.AuthModeNone}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", *principal)
}

func TestAuth_ModeToken(t *testing.T) {
	cfg := &config.Config{AuthMode: config.AuthModeToken, APIToken: "sekret-token"}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer sekret-token", http.StatusOK},
		{"wrong token", "Bearer other-token", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic sekret-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, principal := authHandler(t, cfg, nil)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "api-token", *principal)
			}
		})
	}
}

func TestAuth_ModeHS256(t *testing.T) {
	const secret = "test-secret-32-bytes-long-xxxxx"
	cfg := &config.Config{AuthMode: config.AuthModeHS256, JWTSecret: secret}
	validator := NewSharedSecretValidator(secret)

	t.Run("valid token", func(t *testing.T) {
		handler, principal := authHandler(t, cfg, validator)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+makeToken(secret, jwt.MapClaims{
			"sub": "analyst",
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "analyst", *principal)
	})

	t.Run("token without subject rejected", func(t *testing.T) {
		handler, _ := authHandler(t, cfg, validator)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+makeToken(secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		handler, _ := authHandler(t, cfg, validator)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+makeToken("other-secret", jwt.MapClaims{
			"sub": "analyst",
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		handler, _ := authHandler(t, cfg, validator)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuth_UnknownModeRejects(t *testing.T) {
	handler, _ := authHandler(t, &config.Config{AuthMode: "mystery"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
