package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// HybridCipher protects text with two sequential layers: an asymmetric layer
// under the public key, then a symmetric layer under the AES key. Both layers
// emit base64 text. Decryption runs the layers in the reverse order.
type HybridCipher struct {
	keys   *KeyMaterial
	scheme Scheme
	random io.Reader
}

// Option configures a HybridCipher.
type Option func(*HybridCipher)

// WithScheme selects the layer primitives.
func WithScheme(scheme Scheme) Option {
	return func(c *HybridCipher) {
		c.scheme = scheme
	}
}

// WithRandom overrides the randomness source used for padding and nonces.
func WithRandom(random io.Reader) Option {
	return func(c *HybridCipher) {
		c.random = random
	}
}

// KeyInfo describes the public side of a HybridCipher's key material.
type KeyInfo struct {
	Scheme            Scheme
	Fingerprint       string
	MaxPlaintextBytes int
	PublicKeyPEM      string
}

// NewHybridCipher creates a HybridCipher over keys.
func NewHybridCipher(keys *KeyMaterial, opts ...Option) (*HybridCipher, error) {
	if keys == nil {
		return nil, errors.New("key material is required")
	}

	c := &HybridCipher{
		keys:   keys,
		scheme: DefaultScheme,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}

	scheme, err := ParseScheme(string(c.scheme))
	if err != nil {
		return nil, err
	}
	c.scheme = scheme
	if c.random == nil {
		c.random = rand.Reader
	}

	return c, nil
}

// Scheme returns the scheme this cipher was built with.
func (c *HybridCipher) Scheme() Scheme {
	return c.scheme
}

// MaxPlaintextSize is the largest plaintext, in UTF-8 bytes, Encrypt accepts.
func (c *HybridCipher) MaxPlaintextSize() int {
	return c.keys.MaxPlaintextSize(c.scheme)
}

// Info reports the scheme and the public key details.
func (c *HybridCipher) Info() (KeyInfo, error) {
	pemText, err := c.keys.PublicKeyPEM()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("failed to encode public key: %w", err)
	}

	return KeyInfo{
		Scheme:            c.scheme,
		Fingerprint:       c.keys.Fingerprint(),
		MaxPlaintextBytes: c.MaxPlaintextSize(),
		PublicKeyPEM:      pemText,
	}, nil
}

// Encrypt runs the asymmetric layer and then the symmetric layer over
// plainText and returns the base64 result.
func (c *HybridCipher) Encrypt(plainText string) (string, error) {
	if plainText == "" {
		return "", ErrEmptyInput
	}

	inner, err := c.keys.encryptAsymmetric(c.scheme, c.random, []byte(plainText))
	if err != nil {
		return "", err
	}
	textA := ToBase64(inner)

	outer, err := c.keys.encryptSymmetric(c.scheme, c.random, []byte(textA))
	if err != nil {
		return "", err
	}

	return ToBase64(outer), nil
}

// Decrypt runs the symmetric layer inverse and then the asymmetric layer
// inverse over cipherText.
func (c *HybridCipher) Decrypt(cipherText string) (string, error) {
	if cipherText == "" {
		return "", ErrEmptyInput
	}

	outer, err := FromBase64(cipherText)
	if err != nil {
		return "", err
	}

	textA, err := c.keys.decryptSymmetric(c.scheme, outer)
	if err != nil {
		return "", err
	}

	inner, err := FromBase64(string(textA))
	if err != nil {
		return "", err
	}

	plain, err := c.keys.decryptAsymmetric(c.scheme, c.random, inner)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plain) {
		return "", fmt.Errorf("%w: recovered bytes are not valid utf-8", ErrDecryptionIntegrity)
	}

	return string(plain), nil
}
