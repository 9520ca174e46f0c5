package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "test-key"

func createMockJWKSServer(t *testing.T, publicKey *rsa.PublicKey) *httptest.Server {
	t.Helper()

	keys := []map[string]string{}
	if publicKey != nil {
		keys = append(keys, map[string]string{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
		})
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"keys": keys})
	}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newInitialisedAuthenticator(t *testing.T, publicKey *rsa.PublicKey) *JwtAuthenticator {
	t.Helper()
	server := createMockJWKSServer(t, publicKey)
	t.Cleanup(server.Close)

	auth := &JwtAuthenticator{}
	require.NoError(t, auth.Init(context.Background(), map[string]interface{}{
		"jwks-url":  server.URL + "/.well-known/jwks.json",
		"audiences": []interface{}{"hybridcrypt", "hybridcrypt-admin"},
	}))
	t.Cleanup(func() { _ = auth.Close() })

	return auth
}

func TestJwtAuthenticator_Type(t *testing.T) {
	auth := &JwtAuthenticator{}
	assert.Equal(t, "jwt", auth.Type())
}

func TestJwtAuthenticator_Init(t *testing.T) {
	tests := []struct {
		name          string
		config        map[string]interface{}
		useServer     bool
		expectError   bool
		errorContains string
	}{
		{
			name: "valid configuration with mock server",
			config: map[string]interface{}{
				"audiences": []interface{}{"service1", "service2"},
			},
			useServer: true,
		},
		{
			name: "missing jwks-url",
			config: map[string]interface{}{
				"audiences": []interface{}{"service1"},
			},
			expectError:   true,
			errorContains: "jwks-url is required",
		},
		{
			name: "invalid jwks-url type",
			config: map[string]interface{}{
				"jwks-url": 123,
			},
			expectError:   true,
			errorContains: "jwks-url is required",
		},
		{
			name:          "empty config",
			config:        map[string]interface{}{},
			expectError:   true,
			errorContains: "jwks-url is required",
		},
		{
			name: "unreachable jwks-url",
			config: map[string]interface{}{
				"jwks-url": "http://127.0.0.1:1/.well-known/jwks.json",
			},
			expectError:   true,
			errorContains: "failed to get JWKS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &JwtAuthenticator{}

			if tt.useServer {
				server := createMockJWKSServer(t, nil)
				defer server.Close()
				tt.config["jwks-url"] = server.URL + "/.well-known/jwks.json"
			}

			err := auth.Init(context.Background(), tt.config)
			defer auth.Close()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, auth.jwks)
			assert.Equal(t, tt.config["jwks-url"], auth.JwksUrl)
			assert.Equal(t, []string{"service1", "service2"}, auth.Audiences)
		})
	}
}

func TestJwtAuthenticator_Authenticate(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	auth := newInitialisedAuthenticator(t, &privateKey.PublicKey)

	valid := func(overrides jwt.MapClaims) jwt.MapClaims {
		claims := jwt.MapClaims{
			"sub": "test-user",
			"aud": "hybridcrypt",
			"exp": time.Now().Add(time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		for k, v := range overrides {
			if v == nil {
				delete(claims, k)
				continue
			}
			claims[k] = v
		}
		return claims
	}

	tests := []struct {
		name          string
		credentials   interface{}
		expectError   bool
		errorContains string
		expectedSubj  string
	}{
		{
			name:          "invalid credentials type",
			credentials:   123,
			expectError:   true,
			errorContains: "credentials must be a string token",
		},
		{
			name:          "nil credentials",
			credentials:   nil,
			expectError:   true,
			errorContains: "credentials must be a string token",
		},
		{
			name:        "empty token",
			credentials: "",
			expectError: true,
		},
		{
			name:        "garbage token",
			credentials: "Bearer invalid.token.here",
			expectError: true,
		},
		{
			name:         "valid token with bearer prefix",
			credentials:  "Bearer " + signToken(t, privateKey, valid(nil)),
			expectedSubj: "test-user",
		},
		{
			name:         "valid token without prefix",
			credentials:  signToken(t, privateKey, valid(nil)),
			expectedSubj: "test-user",
		},
		{
			name:         "audience list",
			credentials:  signToken(t, privateKey, valid(jwt.MapClaims{"aud": []string{"other", "hybridcrypt-admin"}})),
			expectedSubj: "test-user",
		},
		{
			name:          "wrong audience",
			credentials:   signToken(t, privateKey, valid(jwt.MapClaims{"aud": "someone-else"})),
			expectError:   true,
			errorContains: "invalid audience",
		},
		{
			name:          "missing subject",
			credentials:   signToken(t, privateKey, valid(jwt.MapClaims{"sub": nil})),
			expectError:   true,
			errorContains: "invalid subject",
		},
		{
			name:          "missing expiry",
			credentials:   signToken(t, privateKey, valid(jwt.MapClaims{"exp": nil})),
			expectError:   true,
			errorContains: "invalid expiry",
		},
		{
			name:        "expired token",
			credentials: signToken(t, privateKey, valid(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})),
			expectError: true,
		},
		{
			name:        "signed by unknown key",
			credentials: signToken(t, otherKey, valid(nil)),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := auth.Authenticate(context.Background(), tt.credentials)

			if tt.expectError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				if result != nil {
					assert.False(t, result.Authenticated)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.Authenticated)
			assert.Equal(t, tt.expectedSubj, result.Subject)
			assert.WithinDuration(t, time.Now().Add(time.Hour), result.Expiration, time.Minute)
		})
	}
}

func TestJwtAuthenticator_AuthenticateBeforeInit(t *testing.T) {
	auth := &JwtAuthenticator{}

	_, err := auth.Authenticate(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialised")
}

func TestJwtAuthenticator_Close(t *testing.T) {
	assert.NoError(t, (&JwtAuthenticator{}).Close())

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	auth := newInitialisedAuthenticator(t, &privateKey.PublicKey)
	assert.NoError(t, auth.Close())
}
