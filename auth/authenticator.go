package auth

import (
	"context"
	"time"
)

type AuthenticationResult struct {
	Authenticated bool
	Subject       string
	Claims        map[string]interface{}
	Expiration    time.Time
}

// Authenticator validates caller credentials for the HTTP transport.
type Authenticator interface {
	Type() string
	Init(ctx context.Context, config map[string]interface{}) error
	Authenticate(ctx context.Context, credentials interface{}) (*AuthenticationResult, error)
	Close() error
}
