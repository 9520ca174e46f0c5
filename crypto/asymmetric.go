package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

// encryptAsymmetric encrypts msg as a single RSA block with the public key.
func (k *KeyMaterial) encryptAsymmetric(scheme Scheme, random io.Reader, msg []byte) ([]byte, error) {
	if limit := k.MaxPlaintextSize(scheme); len(msg) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrInputTooLarge, len(msg), limit)
	}

	var (
		out []byte
		err error
	)
	switch scheme {
	case SchemeSealed:
		out, err = rsa.EncryptOAEP(sha256.New(), random, k.publicKey, msg, nil)
	default:
		out, err = rsa.EncryptPKCS1v15(random, k.publicKey, msg)
	}
	if errors.Is(err, rsa.ErrMessageTooLong) {
		return nil, fmt.Errorf("%w: %v", ErrInputTooLarge, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt asymmetric layer: %w", err)
	}

	return out, nil
}

// decryptAsymmetric reverses encryptAsymmetric with the private key. The
// private key never leaves this method.
func (k *KeyMaterial) decryptAsymmetric(scheme Scheme, random io.Reader, block []byte) ([]byte, error) {
	if len(block) != k.ModulusSize() {
		return nil, fmt.Errorf("%w: asymmetric block is %d bytes, want %d",
			ErrMalformedCiphertext, len(block), k.ModulusSize())
	}

	var (
		out []byte
		err error
	)
	switch scheme {
	case SchemeSealed:
		out, err = rsa.DecryptOAEP(sha256.New(), random, k.privateKey, block, nil)
	default:
		out, err = rsa.DecryptPKCS1v15(random, k.privateKey, block)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionIntegrity, err)
	}

	return out, nil
}
