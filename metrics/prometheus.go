package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitPrometheus builds a meter provider that exports into registry and
// installs it as the global meter provider.
func InitPrometheus(registry *prom.Registry) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	// RSA private key operations dominate; buckets span 50µs to 2.5s.
	histogramView := metric.NewView(
		metric.Instrument{Kind: metric.InstrumentKindHistogram},
		metric.Stream{
			Aggregation: metric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{
					0.00005, // 50 microseconds
					0.0001,  // 100 microseconds
					0.0005,  // 500 microseconds
					0.001,   // 1 millisecond
					0.0025,  // 2.5 milliseconds
					0.005,   // 5 milliseconds
					0.01,    // 10 milliseconds
					0.025,   // 25 milliseconds
					0.05,    // 50 milliseconds
					0.1,     // 100 milliseconds
					0.25,    // 250 milliseconds
					0.5,     // 500 milliseconds
					1.0,     // 1 second
					2.5,     // 2.5 seconds
				},
			},
		},
	)

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithView(histogramView),
	)
	otel.SetMeterProvider(provider)

	return provider, nil
}
