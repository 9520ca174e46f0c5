package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "hybridcrypt"

type (
	// MetricsHandlerOptions configures a MetricsHandler.
	MetricsHandlerOptions struct {
		// Meter defaults to the global meter provider's "hybridcrypt" meter.
		Meter metric.Meter
		// InitialAttributes are attached to every recorded value.
		InitialAttributes attribute.Set
	}

	// MetricsHandler hands out named counters and timers backed by an otel
	// meter. Instruments are created lazily and cached by name.
	MetricsHandler struct {
		meter metric.Meter

		mu         sync.RWMutex
		attributes []attribute.KeyValue
		counters   map[string]metric.Int64Counter
		histograms map[string]metric.Float64Histogram
	}

	Counter struct {
		handler    *MetricsHandler
		instrument metric.Int64Counter
	}

	Timer struct {
		handler    *MetricsHandler
		instrument metric.Float64Histogram
	}
)

func NewMetricsHandler(options MetricsHandlerOptions) *MetricsHandler {
	meter := options.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	return &MetricsHandler{
		meter:      meter,
		attributes: options.InitialAttributes.ToSlice(),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// NewNopMetricsHandler returns a handler that records nothing.
func NewNopMetricsHandler() *MetricsHandler {
	return NewMetricsHandler(MetricsHandlerOptions{Meter: noop.NewMeterProvider().Meter(meterName)})
}

// AddAttributes appends attributes recorded with every subsequent value.
func (h *MetricsHandler) AddAttributes(attrs ...attribute.KeyValue) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attributes = append(h.attributes, attrs...)
}

func (h *MetricsHandler) Counter(name string) Counter {
	h.mu.RLock()
	c, ok := h.counters[name]
	h.mu.RUnlock()
	if ok {
		return Counter{handler: h, instrument: c}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok = h.counters[name]; !ok {
		var err error
		c, err = h.meter.Int64Counter(name)
		if err != nil {
			otel.Handle(err)
			c = noop.Int64Counter{}
		}
		h.counters[name] = c
	}

	return Counter{handler: h, instrument: c}
}

func (h *MetricsHandler) Timer(name string) Timer {
	h.mu.RLock()
	hist, ok := h.histograms[name]
	h.mu.RUnlock()
	if ok {
		return Timer{handler: h, instrument: hist}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if hist, ok = h.histograms[name]; !ok {
		var err error
		hist, err = h.meter.Float64Histogram(name, metric.WithUnit("s"))
		if err != nil {
			otel.Handle(err)
			hist = noop.Float64Histogram{}
		}
		h.histograms[name] = hist
	}

	return Timer{handler: h, instrument: hist}
}

func (h *MetricsHandler) attributeSet(extra []attribute.KeyValue) attribute.Set {
	h.mu.RLock()
	defer h.mu.RUnlock()

	all := make([]attribute.KeyValue, 0, len(h.attributes)+len(extra))
	all = append(all, h.attributes...)
	all = append(all, extra...)
	return attribute.NewSet(all...)
}

// Inc adds delta to the counter.
func (c Counter) Inc(delta int64, attrs ...attribute.KeyValue) {
	c.instrument.Add(context.Background(), delta, metric.WithAttributeSet(c.handler.attributeSet(attrs)))
}

// Record observes d in seconds.
func (t Timer) Record(d time.Duration, attrs ...attribute.KeyValue) {
	t.instrument.Record(context.Background(), d.Seconds(), metric.WithAttributeSet(t.handler.attributeSet(attrs)))
}
