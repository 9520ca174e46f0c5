package metrics

const (
	DefaultPrometheusPath = "/metrics"

	HybridCryptPrefix = "hybridcrypt_"

	// Encryption metrics
	EncryptLatency  = HybridCryptPrefix + "encrypt_latency"
	EncryptRequests = HybridCryptPrefix + "encrypt_requests"
	EncryptErrors   = HybridCryptPrefix + "encrypt_errors"
	EncryptSuccess  = HybridCryptPrefix + "encrypt_success"

	// Decryption metrics
	DecryptLatency  = HybridCryptPrefix + "decrypt_latency"
	DecryptRequests = HybridCryptPrefix + "decrypt_requests"
	DecryptErrors   = HybridCryptPrefix + "decrypt_errors"
	DecryptSuccess  = HybridCryptPrefix + "decrypt_success"

	// HTTP transport metrics
	HTTPRequests = HybridCryptPrefix + "http_requests"
	HTTPLatency  = HybridCryptPrefix + "http_latency"

	// Key material metrics
	KeyGenerationLatency = HybridCryptPrefix + "key_generation_latency"

	// Attribute keys
	AttributeErrorKind = "error_kind"
	AttributeScheme    = "scheme"
	AttributeRoute     = "route"
	AttributeStatus    = "status"
)
