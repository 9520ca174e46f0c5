package crypto

import "errors"

var (
	// ErrKeyGeneration is returned when the random source or the algorithm
	// provider fails while creating key material. It is fatal at startup.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrEmptyInput is returned when Encrypt or Decrypt is called with an empty string.
	ErrEmptyInput = errors.New("input is empty")

	// ErrMalformedCiphertext is returned when a ciphertext is not valid Base64,
	// has the wrong length for the block cipher, or fails the symmetric layer.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrDecryptionIntegrity is returned when the asymmetric layer rejects a block.
	ErrDecryptionIntegrity = errors.New("asymmetric decryption rejected the block")

	// ErrInputTooLarge is returned when a plaintext does not fit in a single
	// asymmetric block.
	ErrInputTooLarge = errors.New("input exceeds asymmetric block capacity")
)

// ErrorKind is a stable, loggable name for a failure returned by this package.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindKeyGeneration       ErrorKind = "key_generation"
	KindEmptyInput          ErrorKind = "empty_input"
	KindMalformedCiphertext ErrorKind = "malformed_ciphertext"
	KindDecryptionIntegrity ErrorKind = "decryption_integrity"
	KindInputTooLarge       ErrorKind = "input_too_large"
	KindInternal            ErrorKind = "internal"
)

// Kind classifies err. A nil error maps to KindNone and anything that does not
// wrap one of the sentinels above maps to KindInternal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrInputTooLarge):
		return KindInputTooLarge
	case errors.Is(err, ErrMalformedCiphertext):
		return KindMalformedCiphertext
	case errors.Is(err, ErrDecryptionIntegrity):
		return KindDecryptionIntegrity
	case errors.Is(err, ErrKeyGeneration):
		return KindKeyGeneration
	default:
		return KindInternal
	}
}
