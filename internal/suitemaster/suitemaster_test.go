package suitemaster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sergeii/twintail/internal/cryptoprim"
	"github.com/sergeii/twintail/internal/suitemaster"
)

var testKey = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	value := map[string]any{
		"key":  "cards",
		"id":   float64(1),
		"name": "sample card",
	}

	blob, tableKey, err := suitemaster.Encrypt(value, testKey)
	require.NoError(t, err)
	assert.Equal(t, "cards", tableKey)

	got, err := suitemaster.Decrypt(blob, testKey)
	require.NoError(t, err)
	assert.Equal(t, "cards", got.Key)
	assert.Equal(t, value, got.Value)
}

func TestEncryptRejectsMissingKeyField(t *testing.T) {
	_, _, err := suitemaster.Encrypt(map[string]any{"id": float64(1)}, testKey)
	assert.Error(t, err)
}

func TestEncryptRejectsNonObjectDocument(t *testing.T) {
	_, _, err := suitemaster.Encrypt([]any{1, 2, 3}, testKey)
	assert.Error(t, err)
}

func TestEncryptProducesDistinctIVsEachCall(t *testing.T) {
	value := map[string]any{"key": "musics", "items": []any{1, 2, 3}}

	a, _, err := suitemaster.Encrypt(value, testKey)
	require.NoError(t, err)
	b, _, err := suitemaster.Encrypt(value, testKey)
	require.NoError(t, err)

	assert.NotEqual(t, a[:16], b[:16], "IVs should differ between calls")
	assert.NotEqual(t, a, b, "ciphertexts should differ because IVs differ")
}

func TestDecryptRejectsShortPayload(t *testing.T) {
	_, err := suitemaster.Decrypt([]byte{1, 2, 3}, testKey)
	assert.Error(t, err)
}

func TestDecryptRejectsDocumentMissingKeyField(t *testing.T) {
	// Built directly (bypassing suitemaster.Encrypt's own MissingKey check)
	// to exercise Decrypt's independent validation of the decoded document.
	packed, err := msgpack.Marshal(map[string]any{"id": float64(1)})
	require.NoError(t, err)
	ciphertext, err := cryptoprim.EncryptCBCWithIV(testKey[:], make([]byte, 16), packed)
	require.NoError(t, err)
	blob := append(make([]byte, 16), ciphertext...)

	_, err = suitemaster.Decrypt(blob, testKey)
	assert.Error(t, err)
}

func TestDeriveFilenameIsStableForSameCiphertext(t *testing.T) {
	ciphertext := []byte("deterministic input")
	a := suitemaster.DeriveFilename(ciphertext, 0)
	b := suitemaster.DeriveFilename(ciphertext, 0)
	assert.Equal(t, a, b)
	assert.Regexp(t, `^[0-9a-f]{8}_\d{2}$`, a)
}

func TestDeriveFilenameVariesByOrdinal(t *testing.T) {
	ciphertext := []byte("same ciphertext")
	assert.NotEqual(t,
		suitemaster.DeriveFilename(ciphertext, 0),
		suitemaster.DeriveFilename(ciphertext, 1),
	)
}
