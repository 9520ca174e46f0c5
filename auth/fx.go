package auth

import (
	"context"
	"fmt"

	"github.com/hybridcrypt/hybridcrypt/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	newAuthManagerProvider,
)

// newAuthManagerProvider registers the authenticator named in the config. With
// no authentication section the manager is empty and the transport serves
// requests unauthenticated.
func newAuthManagerProvider(lc fx.Lifecycle, configProvider config.ConfigProvider, logger *zap.Logger) (*AuthManager, error) {
	manager := NewAuthManager()

	authCfg := configProvider.GetProxyConfig().Authentication
	if authCfg == nil {
		return manager, nil
	}

	authenticator, err := NewAuthenticator(authCfg.Type, logger)
	if err != nil {
		return nil, err
	}

	if err := authenticator.Init(context.Background(), authCfg.Config); err != nil {
		return nil, fmt.Errorf("failed to initialize %s authenticator: %w", authCfg.Type, err)
	}

	if err := manager.RegisterAuthenticator(authenticator); err != nil {
		return nil, err
	}

	logger.Info("authentication enabled", zap.String("type", authCfg.Type))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return manager.Close()
		},
	})

	return manager, nil
}

// NewAuthenticator returns an uninitialised authenticator of the given type.
func NewAuthenticator(authType string, logger *zap.Logger) (Authenticator, error) {
	switch authType {
	case JwtAuthType:
		return &JwtAuthenticator{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", authType)
	}
}
