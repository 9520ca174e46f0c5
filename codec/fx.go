package codec

import (
	"time"

	"github.com/hybridcrypt/hybridcrypt/config"
	"github.com/hybridcrypt/hybridcrypt/crypto"
	"github.com/hybridcrypt/hybridcrypt/metrics"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	newKeyMaterialProvider,
	newHybridCipherProvider,
	newKeyInfoProvider,
	newTextCodecProvider,
)

func newKeyMaterialProvider(logger *zap.Logger, metricsHandler *metrics.MetricsHandler) (*crypto.KeyMaterial, error) {
	return GenerateKeyMaterial(logger, metricsHandler)
}

// GenerateKeyMaterial creates the process key material and logs its
// fingerprint.
func GenerateKeyMaterial(logger *zap.Logger, metricsHandler *metrics.MetricsHandler) (*crypto.KeyMaterial, error) {
	if metricsHandler == nil {
		metricsHandler = metrics.NewNopMetricsHandler()
	}

	start := time.Now()
	keys, err := crypto.GenerateKeyMaterial(nil)
	metricsHandler.Timer(metrics.KeyGenerationLatency).Record(time.Since(start))
	if err != nil {
		logger.Error("failed to generate key material", zap.Error(err))
		return nil, err
	}

	logger.Info("generated key material",
		zap.String("fingerprint", keys.Fingerprint()),
		zap.Int("modulus_bits", keys.ModulusSize()*8),
		zap.Duration("elapsed", time.Since(start)),
	)

	return keys, nil
}

func newHybridCipherProvider(configProvider config.ConfigProvider, keys *crypto.KeyMaterial) (*crypto.HybridCipher, error) {
	scheme, err := crypto.ParseScheme(configProvider.GetProxyConfig().Encryption.Scheme)
	if err != nil {
		return nil, err
	}

	return crypto.NewHybridCipher(keys, crypto.WithScheme(scheme))
}

func newKeyInfoProvider(c *crypto.HybridCipher) (crypto.KeyInfo, error) {
	return c.Info()
}

func newTextCodecProvider(c *crypto.HybridCipher, metricsHandler *metrics.MetricsHandler, logger *zap.Logger) *TextCodec {
	return NewTextCodec(c, metricsHandler, logger)
}
