package cryptoprim_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeii/twintail/internal/cryptoprim"
)

var testKey = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
var testIV = [16]byte{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

func TestEncryptDecryptCBCRoundTrip(t *testing.T) {
	cfg := cryptoprim.AESConfig{Key: testKey, IV: testIV}
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	ciphertext, err := cfg.EncryptCBC(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	got, err := cfg.DecryptCBC(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptCBCRejectsTruncatedCiphertext(t *testing.T) {
	cfg := cryptoprim.AESConfig{Key: testKey, IV: testIV}
	_, err := cfg.DecryptCBC([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecryptCBCRejectsCorruptPadding(t *testing.T) {
	cfg := cryptoprim.AESConfig{Key: testKey, IV: testIV}
	ciphertext, err := cfg.EncryptCBC([]byte("hello world"))
	require.NoError(t, err)

	corrupt := bytes.Clone(ciphertext)
	corrupt[len(corrupt)-1] ^= 0xFF

	_, err = cfg.DecryptCBC(corrupt)
	assert.Error(t, err)
}

func TestEncryptDecryptCBCWithIVRoundTrip(t *testing.T) {
	key := testKey[:]
	iv := testIV[:]
	plaintext := []byte("suitemaster payload")

	ciphertext, err := cryptoprim.EncryptCBCWithIV(key, iv, plaintext)
	require.NoError(t, err)

	got, err := cryptoprim.DecryptCBCWithIV(key, iv, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}
