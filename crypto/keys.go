package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"io"
)

// KeyMaterial holds the symmetric key and the asymmetric keypair used by a
// HybridCipher. It is immutable once generated and safe to share between
// goroutines. Nothing in this type serializes the secret halves.
type KeyMaterial struct {
	symmetricKey []byte
	publicKey    *rsa.PublicKey
	privateKey   *rsa.PrivateKey
	fingerprint  string
}

// GenerateKeyMaterial creates a fresh 128-bit AES key and a 2048-bit RSA
// keypair. A nil random uses crypto/rand.
func GenerateKeyMaterial(random io.Reader) (*KeyMaterial, error) {
	if random == nil {
		random = rand.Reader
	}

	symmetricKey := make([]byte, SymmetricKeySize)
	if _, err := io.ReadFull(random, symmetricKey); err != nil {
		return nil, fmt.Errorf("%w: failed to read symmetric key: %v", ErrKeyGeneration, err)
	}

	privateKey, err := rsa.GenerateKey(random, AsymmetricKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate rsa keypair: %v", ErrKeyGeneration, err)
	}

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode public key: %v", ErrKeyGeneration, err)
	}
	sum := sha256.Sum256(der)

	return &KeyMaterial{
		symmetricKey: symmetricKey,
		publicKey:    &privateKey.PublicKey,
		privateKey:   privateKey,
		fingerprint:  hex.EncodeToString(sum[:]),
	}, nil
}

// SymmetricKey returns a copy of the AES key.
func (k *KeyMaterial) SymmetricKey() []byte {
	out := make([]byte, len(k.symmetricKey))
	copy(out, k.symmetricKey)
	return out
}

// PublicKey returns the RSA public key.
func (k *KeyMaterial) PublicKey() *rsa.PublicKey {
	return k.publicKey
}

// Fingerprint is the hex SHA-256 of the DER encoded public key. It identifies
// the key material in logs without revealing anything secret.
func (k *KeyMaterial) Fingerprint() string {
	return k.fingerprint
}

// PublicKeyPEM encodes the public key as a PKIX PEM block.
func (k *KeyMaterial) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.publicKey)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// ModulusSize is the RSA modulus length in bytes.
func (k *KeyMaterial) ModulusSize() int {
	return k.publicKey.Size()
}

// MaxPlaintextSize returns the single-block capacity of this key under scheme.
func (k *KeyMaterial) MaxPlaintextSize(scheme Scheme) int {
	return scheme.MaxPlaintextSize(k.ModulusSize())
}
