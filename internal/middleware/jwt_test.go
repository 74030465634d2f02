package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeToken creates a signed HS256 JWT from the given secret and claims.
func makeToken(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}

func TestSharedSecretValidator_Validate(t *testing.T) {
	const secret = "test-secret-32-bytes-long-xxxxx"

	tests := []struct {
		name    string
		token   string
		wantErr string
		wantSub string
		wantIss string
		wantAud []string
	}{
		{
			name: "valid token with all claims",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-123",
				"iss": "https://auth.example.com",
				"aud": "pbi-rag",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantSub: "user-123",
			wantIss: "https://auth.example.com",
			wantAud: []string{"pbi-rag"},
		},
		{
			name: "valid token with only subject",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-456",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantSub: "user-456",
		},
		{
			name: "audience as list",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-789",
				"aud": []string{"pbi-rag", "other"},
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantSub: "user-789",
			wantAud: []string{"pbi-rag", "other"},
		},
		{
			name: "expired token returns error",
			token: makeToken(secret, jwt.MapClaims{
				"sub": "user-expired",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			wantErr: "jwt parse:",
		},
		{
			name: "wrong secret returns error",
			token: makeToken("wrong-secret", jwt.MapClaims{
				"sub": "user-wrong",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantErr: "jwt parse:",
		},
		{
			name: "RS256 token rejected",
			token: func() string {
				key, _ := rsa.GenerateKey(rand.Reader, 2048)
				tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
					"sub": "rsa-user",
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				signed, _ := tok.SignedString(key)
				return signed
			}(),
			wantErr: "jwt parse:",
		},
		{
			name:    "malformed token returns error",
			token:   "not.a.valid.jwt.token",
			wantErr: "jwt parse:",
		},
		{
			name:    "empty token returns error",
			token:   "",
			wantErr: "jwt parse:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSharedSecretValidator(secret)
			claims, err := v.Validate(context.Background(), tt.token)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, tt.wantSub, claims.Subject)
			assert.Equal(t, tt.wantIss, claims.Issuer)
			assert.Equal(t, tt.wantAud, claims.Audience)
			assert.NotNil(t, claims.Raw)
		})
	}
}

func TestNewOIDCValidator_Discovery(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"issuer":%q,"jwks_uri":%q}`, issuer, issuer+"/keys")
	}))
	defer srv.Close()
	issuer = srv.URL

	v, err := NewOIDCValidator(t.Context(), issuer, "pbi-rag")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, issuer, v.issuer)
}

func TestNewOIDCValidator_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewOIDCValidator(context.Background(), srv.URL, "pbi-rag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oidc provider discovery")
}
