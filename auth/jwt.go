package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	JwtAuthType = "jwt"

	bearerPrefix = "Bearer "

	defaultJwksRefreshInterval = 5 * time.Minute
)

type JwtAuthenticator struct {
	Audiences []string `yaml:"audiences"`
	JwksUrl   string   `yaml:"jwks-url"`
	Logger    *zap.Logger
	jwks      *keyfunc.JWKS
}

func (j *JwtAuthenticator) Type() string {
	return JwtAuthType
}

func (j *JwtAuthenticator) Init(ctx context.Context, config map[string]interface{}) error {
	jwksUrl, ok := config["jwks-url"].(string)
	if !ok || jwksUrl == "" {
		return fmt.Errorf("jwks-url is required")
	}
	j.JwksUrl = jwksUrl

	if audiencesRaw, ok := config["audiences"].([]interface{}); ok {
		for _, a := range audiencesRaw {
			if audience, ok := a.(string); ok {
				j.Audiences = append(j.Audiences, audience)
			}
		}
	}

	if j.Logger == nil {
		j.Logger = zap.NewNop()
	}

	jwks, err := keyfunc.Get(jwksUrl, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			j.Logger.Warn("jwks refresh failed", zap.String("jwks_url", jwksUrl), zap.Error(err))
		},
		RefreshInterval:   defaultJwksRefreshInterval,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return fmt.Errorf("failed to get JWKS: %w", err)
	}

	j.jwks = jwks

	return nil
}

func (j *JwtAuthenticator) Authenticate(ctx context.Context, credentials interface{}) (*AuthenticationResult, error) {
	jwtString, ok := credentials.(string)
	if !ok {
		return nil, fmt.Errorf("credentials must be a string token")
	}
	if j.jwks == nil {
		return nil, fmt.Errorf("jwt authenticator is not initialised")
	}

	jwtString = strings.TrimPrefix(jwtString, bearerPrefix)

	token, err := jwt.Parse(jwtString, j.jwks.Keyfunc)
	if err != nil {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid token signature")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid claims type")
	}

	if !j.audienceAllowed(claims) {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid audience: %v", claims["aud"])
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid subject: %v", claims["sub"])
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("invalid expiry: %v", claims["exp"])
	}
	expiry := time.Unix(int64(expFloat), 0)

	if time.Now().After(expiry) {
		return &AuthenticationResult{
			Authenticated: false,
		}, fmt.Errorf("token expired")
	}

	return &AuthenticationResult{
		Authenticated: true,
		Subject:       sub,
		Claims:        claims,
		Expiration:    expiry,
	}, nil
}

// audienceAllowed accepts "aud" as a single string or as a list and requires
// at least one value to match a configured audience.
func (j *JwtAuthenticator) audienceAllowed(claims jwt.MapClaims) bool {
	var tokenAuds []string
	switch aud := claims["aud"].(type) {
	case string:
		tokenAuds = []string{aud}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok {
				tokenAuds = append(tokenAuds, s)
			}
		}
	}

	for _, got := range tokenAuds {
		for _, audience := range j.Audiences {
			if got != "" && got == audience {
				return true
			}
		}
	}

	return false
}

func (j *JwtAuthenticator) Close() error {
	if j.jwks != nil {
		j.jwks.EndBackground()
	}
	return nil
}
