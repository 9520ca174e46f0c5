package codec

import (
	"context"
	"time"

	"github.com/hybridcrypt/hybridcrypt/crypto"
	"github.com/hybridcrypt/hybridcrypt/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Cipher is the text transform wrapped by a TextCodec.
type Cipher interface {
	Encrypt(plainText string) (string, error)
	Decrypt(cipherText string) (string, error)
}

// TextCodec is what the HTTP transport and the shell call. Only sizes and
// error kinds reach its logs and metrics, never the text itself.
type TextCodec struct {
	cipher         Cipher
	metricsHandler *metrics.MetricsHandler
	logger         *zap.Logger
}

// NewTextCodec wraps c. A nil handler or logger disables metrics or logging.
func NewTextCodec(c Cipher, metricsHandler *metrics.MetricsHandler, logger *zap.Logger) *TextCodec {
	if metricsHandler == nil {
		metricsHandler = metrics.NewNopMetricsHandler()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TextCodec{
		cipher:         c,
		metricsHandler: metricsHandler,
		logger:         logger,
	}
}

// Encrypt encrypts plainText with the wrapped cipher.
func (t *TextCodec) Encrypt(ctx context.Context, plainText string) (string, error) {
	return t.run(ctx, "encrypt", plainText, t.cipher.Encrypt, opMetrics{
		requests: metrics.EncryptRequests,
		latency:  metrics.EncryptLatency,
		success:  metrics.EncryptSuccess,
		errors:   metrics.EncryptErrors,
	})
}

// Decrypt decrypts cipherText with the wrapped cipher.
func (t *TextCodec) Decrypt(ctx context.Context, cipherText string) (string, error) {
	return t.run(ctx, "decrypt", cipherText, t.cipher.Decrypt, opMetrics{
		requests: metrics.DecryptRequests,
		latency:  metrics.DecryptLatency,
		success:  metrics.DecryptSuccess,
		errors:   metrics.DecryptErrors,
	})
}

type opMetrics struct {
	requests string
	latency  string
	success  string
	errors   string
}

func (t *TextCodec) run(ctx context.Context, op, input string, fn func(string) (string, error), m opMetrics) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	t.metricsHandler.Counter(m.requests).Inc(1)
	out, err := fn(input)
	t.metricsHandler.Timer(m.latency).Record(time.Since(start))

	if err != nil {
		kind := crypto.Kind(err)
		t.metricsHandler.Counter(m.errors).Inc(1, attribute.String(metrics.AttributeErrorKind, string(kind)))
		t.logger.Debug("operation failed",
			zap.String("op", op),
			zap.String("error_kind", string(kind)),
			zap.Int("input_bytes", len(input)),
		)
		return "", err
	}

	t.metricsHandler.Counter(m.success).Inc(1)
	return out, nil
}
