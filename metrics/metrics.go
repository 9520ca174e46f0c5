package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/hybridcrypt/hybridcrypt/config"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type (
	MetricsProvider interface {
		Start() error
		Stop(ctx context.Context) error
		Meter() otelmetric.Meter
	}

	httpPromMetricsProvider struct {
		host          string
		port          int
		path          string
		server        *http.Server
		meterProvider *sdkmetric.MeterProvider
		logger        *zap.Logger
	}
)

func newMetricsProvider(lc fx.Lifecycle, configProvider config.ConfigProvider, logger *zap.Logger) (MetricsProvider, error) {
	cfg := configProvider.GetProxyConfig()

	provider := &httpPromMetricsProvider{
		host:   cfg.Server.Host,
		port:   cfg.Metrics.Port,
		path:   DefaultPrometheusPath,
		logger: logger,
	}

	registry := prom.NewRegistry()
	meterProvider, err := InitPrometheus(registry)
	if err != nil {
		return nil, err
	}
	provider.meterProvider = meterProvider

	mux := http.NewServeMux()
	mux.Handle(provider.path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	provider.server = &http.Server{Addr: provider.getHostPort(), Handler: mux}

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

// newMetricsHandlerProvider builds the root handler shared by the codec and
// the transport.
func newMetricsHandlerProvider(provider MetricsProvider, configProvider config.ConfigProvider) *MetricsHandler {
	return NewMetricsHandler(MetricsHandlerOptions{
		Meter: provider.Meter(),
		InitialAttributes: attribute.NewSet(
			attribute.String(AttributeScheme, configProvider.GetProxyConfig().Encryption.Scheme),
		),
	})
}

func (h *httpPromMetricsProvider) Start() error {
	if h.port == 0 {
		h.logger.Info("metrics endpoint disabled")
		return nil
	}

	lis, err := net.Listen("tcp", h.getHostPort())
	if err != nil {
		return fmt.Errorf("failed to listen for metrics: %w", err)
	}

	go func() {
		h.logger.Info("metrics server started", zap.String("endpoint", h.getHostPortPath()))
		if err := h.server.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("metrics server error", zap.Error(err))
		}
	}()

	return nil
}

func (h *httpPromMetricsProvider) Stop(ctx context.Context) error {
	return errors.Join(h.server.Shutdown(ctx), h.meterProvider.Shutdown(ctx))
}

func (h *httpPromMetricsProvider) Meter() otelmetric.Meter {
	return h.meterProvider.Meter(meterName)
}

func (h *httpPromMetricsProvider) getHostPort() string {
	return fmt.Sprintf("%s:%d", h.host, h.port)
}

func (h *httpPromMetricsProvider) getHostPortPath() string {
	return fmt.Sprintf("%s:%d%s", h.host, h.port, h.path)
}
