package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// encryptSymmetric applies the AES layer selected by scheme.
func (k *KeyMaterial) encryptSymmetric(scheme Scheme, random io.Reader, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(k.symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	if scheme == SchemeSealed {
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create gcm: %w", err)
		}

		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(random, nonce); err != nil {
			return nil, fmt.Errorf("failed to read nonce: %w", err)
		}

		return gcm.Seal(nonce, nonce, plaintext, nil), nil
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += block.BlockSize() {
		block.Encrypt(out[i:i+block.BlockSize()], padded[i:i+block.BlockSize()])
	}

	return out, nil
}

// decryptSymmetric reverses encryptSymmetric. Every failure is reported as
// ErrMalformedCiphertext.
func (k *KeyMaterial) decryptSymmetric(scheme Scheme, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(k.symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	if scheme == SchemeSealed {
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create gcm: %w", err)
		}

		nonceSize := gcm.NonceSize()
		if len(ciphertext) < nonceSize+gcm.Overhead() {
			return nil, fmt.Errorf("%w: ciphertext too short", ErrMalformedCiphertext)
		}

		nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
		plaintext, err := gcm.Open(nil, nonce, sealed, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
		}
		return plaintext, nil
	}

	size := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%size != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of the block size %d",
			ErrMalformedCiphertext, len(ciphertext), size)
	}

	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += size {
		block.Decrypt(out[i:i+size], ciphertext[i:i+size])
	}

	return pkcs7Unpad(out, size)
}

func pkcs7Pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrMalformedCiphertext)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: invalid padding", ErrMalformedCiphertext)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrMalformedCiphertext)
		}
	}

	return data[:len(data)-n], nil
}
