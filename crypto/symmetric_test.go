package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPKCS7Pad(t *testing.T) {
	tests := []struct {
		name      string
		input     []byte
		wantLen   int
		wantPadBy byte
	}{
		{name: "empty", input: []byte{}, wantLen: 16, wantPadBy: 16},
		{name: "one byte", input: []byte("a"), wantLen: 16, wantPadBy: 15},
		{name: "one block minus one", input: bytes.Repeat([]byte("a"), 15), wantLen: 16, wantPadBy: 1},
		{name: "exact block", input: bytes.Repeat([]byte("a"), 16), wantLen: 32, wantPadBy: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			padded := pkcs7Pad(tt.input, BlockSize)
			assert.Len(t, padded, tt.wantLen)
			assert.Equal(t, tt.wantPadBy, padded[len(padded)-1])

			unpadded, err := pkcs7Unpad(padded, BlockSize)
			require.NoError(t, err)
			assert.Equal(t, tt.input, unpadded)
		})
	}
}

func TestPKCS7Unpad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "not block aligned", input: bytes.Repeat([]byte{1}, 15)},
		{name: "zero pad byte", input: append(bytes.Repeat([]byte("a"), 15), 0)},
		{name: "pad byte larger than block", input: append(bytes.Repeat([]byte("a"), 15), 17)},
		{name: "inconsistent padding", input: append(bytes.Repeat([]byte("a"), 13), 3, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pkcs7Unpad(tt.input, BlockSize)
			assert.ErrorIs(t, err, ErrMalformedCiphertext)
		})
	}
}

func TestSymmetricLayer_LegacyIsDeterministic(t *testing.T) {
	keys := testKeys(t)
	input := []byte("the same text under the same key")

	first, err := keys.encryptSymmetric(SchemeLegacy, nil, input)
	require.NoError(t, err)
	second, err := keys.encryptSymmetric(SchemeLegacy, nil, input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, len(first)%BlockSize)
}

func TestSymmetricLayer_SealedUsesFreshNonce(t *testing.T) {
	keys := testKeys(t)
	cipher, err := NewHybridCipher(keys, WithScheme(SchemeSealed))
	require.NoError(t, err)
	input := []byte("nonce reuse check")

	first, err := keys.encryptSymmetric(SchemeSealed, cipher.random, input)
	require.NoError(t, err)
	second, err := keys.encryptSymmetric(SchemeSealed, cipher.random, input)
	require.NoError(t, err)

	assert.NotEqual(t, first[:GCMNonceSize], second[:GCMNonceSize])
	assert.Len(t, first, GCMNonceSize+len(input)+GCMTagSize)

	plain, err := keys.decryptSymmetric(SchemeSealed, first)
	require.NoError(t, err)
	assert.Equal(t, input, plain)
}

func TestSymmetricLayer_SealedTooShort(t *testing.T) {
	keys := testKeys(t)

	_, err := keys.decryptSymmetric(SchemeSealed, make([]byte, GCMNonceSize+GCMTagSize-1))
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}
