// Package suitemaster implements the on-disk format for suitemaster
// gameplay-data files: a random 16-byte IV prepended to an AES-128-CBC
// ciphertext, whose plaintext is a MessagePack-encoded JSON value keyed by
// the table name it holds.
package suitemaster

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sergeii/twintail/internal/cryptoprim"
	"github.com/sergeii/twintail/internal/twerrors"
	"github.com/sergeii/twintail/pkg/random"
)

const ivSize = 16

// File is a single suitemaster table: Key is the table's own "key" field,
// read from the plaintext document itself (not from any filename), and
// Value holds the full decoded JSON document.
type File struct {
	Key   string
	Value any
}

// Encrypt reads value's top-level "key" field (error MissingKey if absent
// or non-string), serializes value as MessagePack, encrypts it under key
// with a fresh random IV, and returns iv||ciphertext ready to write to
// disk alongside the table key it was filed under.
func Encrypt(value any, key [16]byte) ([]byte, string, error) {
	tableKey, err := extractKey(value, "suitemaster.Encrypt")
	if err != nil {
		return nil, "", err
	}
	packed, err := msgpack.Marshal(value)
	if err != nil {
		return nil, "", twerrors.New(twerrors.KindCodec, "suitemaster.Encrypt", err)
	}
	iv, err := random.RandBytes(ivSize)
	if err != nil {
		return nil, "", twerrors.New(twerrors.KindCrypto, "suitemaster.Encrypt", err)
	}
	ciphertext, err := cryptoprim.EncryptCBCWithIV(key[:], iv, packed)
	if err != nil {
		return nil, "", err
	}
	return append(iv, ciphertext...), tableKey, nil
}

// Decrypt splits blob into its leading IV and AES-CBC ciphertext, decrypts
// it under key, and unpacks the MessagePack plaintext into a generic JSON
// value. The returned File.Key is read from the decoded document's own
// "key" field (error MissingKey if absent), per the spec's {json.key}.json
// output naming rule.
func Decrypt(blob []byte, key [16]byte) (File, error) {
	if len(blob) <= ivSize {
		return File{}, twerrors.New(twerrors.KindCodec, "suitemaster.Decrypt",
			fmt.Errorf("payload too short to contain an IV"))
	}
	iv, ciphertext := blob[:ivSize], blob[ivSize:]
	plaintext, err := cryptoprim.DecryptCBCWithIV(key[:], iv, ciphertext)
	if err != nil {
		return File{}, err
	}
	var value any
	if err := msgpack.Unmarshal(plaintext, &value); err != nil {
		return File{}, twerrors.New(twerrors.KindCodec, "suitemaster.Decrypt", err)
	}
	tableKey, err := extractKey(value, "suitemaster.Decrypt")
	if err != nil {
		return File{}, err
	}
	return File{Key: tableKey, Value: value}, nil
}

// extractKey reads the top-level "key" field out of a decoded JSON/MessagePack
// document, reporting MissingKey if value isn't an object or its "key" field
// isn't a non-empty string.
func extractKey(value any, op string) (string, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return "", twerrors.New(twerrors.KindCodec, op, fmt.Errorf("MissingKey: document is not a JSON object"))
	}
	raw, ok := obj["key"]
	if !ok {
		return "", twerrors.New(twerrors.KindCodec, op, fmt.Errorf("MissingKey: no top-level \"key\" field"))
	}
	key, ok := raw.(string)
	if !ok || key == "" {
		return "", twerrors.New(twerrors.KindCodec, op, fmt.Errorf("MissingKey: \"key\" field is not a non-empty string"))
	}
	return key, nil
}

// DeriveFilename names an encrypted suitemaster file after the first 8 hex
// characters of its ciphertext's SHA-256 digest and its ordinal position
// within the batch being written, e.g. "a1b2c3d4_00". The same ciphertext
// and ordinal always give the same name; since Encrypt uses a fresh random
// IV on every call, the same table encrypted twice gets different names.
func DeriveFilename(ciphertext []byte, ordinal int) string {
	sum := sha256.Sum256(ciphertext)
	prefix := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("%s_%02d", prefix, ordinal)
}
