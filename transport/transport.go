package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hybridcrypt/hybridcrypt/auth"
	"github.com/hybridcrypt/hybridcrypt/codec"
	"github.com/hybridcrypt/hybridcrypt/config"
	"github.com/hybridcrypt/hybridcrypt/crypto"
	"github.com/hybridcrypt/hybridcrypt/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

type (
	TransportProvider interface {
		Start() error
		Stop(ctx context.Context) error
		Addr() string
	}

	httpTransportProvider struct {
		host     string
		port     int
		server   *http.Server
		listener net.Listener
		logger   *zap.Logger
	}
)

func newTransportProvider(lc fx.Lifecycle, configProvider config.ConfigProvider, logger *zap.Logger,
	textCodec *codec.TextCodec, keyInfo crypto.KeyInfo, authManager *auth.AuthManager,
	metricsHandler *metrics.MetricsHandler) (TransportProvider, error) {

	cfg := configProvider.GetProxyConfig()

	var authType string
	if cfg.Authentication != nil {
		authType = cfg.Authentication.Type
	}

	provider := NewTransportProvider(cfg.Server.Host, cfg.Server.Port, logger, HandlerOptions{
		Codec:          textCodec,
		KeyInfo:        keyInfo,
		Auth:           authManager,
		AuthType:       authType,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         logger,
		MetricsHandler: metricsHandler,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return provider.Start()
		},
		OnStop: func(ctx context.Context) error {
			return provider.Stop(ctx)
		},
	})

	return provider, nil
}

// NewTransportProvider serves the HTTP API on host:port. Port 0 picks a free
// port; Addr reports the bound address after Start.
func NewTransportProvider(host string, port int, logger *zap.Logger, opts HandlerOptions) TransportProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &httpTransportProvider{
		host:   host,
		port:   port,
		logger: logger,
		server: &http.Server{
			Handler:           NewHandler(opts),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

func (t *httpTransportProvider) Start() error {
	lis, err := net.Listen("tcp", t.getHostPort())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	t.listener = lis

	t.logger.Info(
		"transport started",
		zap.String("host", t.host),
		zap.String("addr", lis.Addr().String()),
	)

	go func() {
		if err := t.server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("transport server error", zap.Error(err))
		}
	}()

	return nil
}

func (t *httpTransportProvider) Stop(ctx context.Context) error {
	t.logger.Info("transport stopping")
	return t.server.Shutdown(ctx)
}

func (t *httpTransportProvider) Addr() string {
	if t.listener == nil {
		return t.getHostPort()
	}
	return t.listener.Addr().String()
}

func (t *httpTransportProvider) getHostPort() string {
	return fmt.Sprintf("%s:%d", t.host, t.port)
}
