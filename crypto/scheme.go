package crypto

import (
	"crypto/sha256"
	"fmt"
)

// Scheme selects the primitives used by the two layers of a HybridCipher.
type Scheme string

const (
	// SchemeLegacy is RSA PKCS#1 v1.5 followed by AES-128-ECB with PKCS#7
	// padding. It is unauthenticated and kept for compatibility with existing
	// ciphertexts.
	SchemeLegacy Scheme = "legacy"

	// SchemeSealed is RSA-OAEP (SHA-256) followed by AES-128-GCM with a random
	// nonce prefix.
	SchemeSealed Scheme = "sealed"

	DefaultScheme = SchemeLegacy
)

const (
	// SymmetricKeySize is the AES key length in bytes (128 bits).
	SymmetricKeySize = 16
	// AsymmetricKeyBits is the RSA modulus size.
	AsymmetricKeyBits = 2048
	// BlockSize is the AES block size in bytes.
	BlockSize = 16
	// GCMNonceSize is the nonce prepended to sealed ciphertexts.
	GCMNonceSize = 12
	// GCMTagSize is the authentication tag appended by GCM.
	GCMTagSize = 16

	pkcs1v15Overhead = 11
)

// ParseScheme maps a configuration value to a Scheme. The empty string selects
// DefaultScheme.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case "":
		return DefaultScheme, nil
	case SchemeLegacy, SchemeSealed:
		return Scheme(s), nil
	default:
		return "", fmt.Errorf("unsupported encryption scheme %q", s)
	}
}

func (s Scheme) String() string {
	return string(s)
}

// MaxPlaintextSize is the largest plaintext, in bytes, that fits in a single
// RSA block of a modulus of modulusBytes bytes under scheme s.
func (s Scheme) MaxPlaintextSize(modulusBytes int) int {
	switch s {
	case SchemeSealed:
		return modulusBytes - 2*sha256.Size - 2
	default:
		return modulusBytes - pkcs1v15Overhead
	}
}
