// Package cryptoprim implements the raw cryptographic primitives the rest
// of twintail composes: AES-128-CBC with PKCS#7 padding for suitemaster and
// API-body traffic, and HMAC/JWT verification for save data.
package cryptoprim

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/sergeii/twintail/internal/twerrors"
)

// AESConfig pairs a fixed AES-128 key with a fixed IV, as baked into the
// game client for a given region.
type AESConfig struct {
	Key [16]byte
	IV  [16]byte
}

// EncryptCBC pads plaintext with PKCS#7 and encrypts it under cfg using
// AES-128-CBC and cfg's fixed IV.
func (cfg AESConfig) EncryptCBC(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(cfg.Key[:])
	if err != nil {
		return nil, twerrors.New(twerrors.KindCrypto, "aes.EncryptCBC", err)
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, cfg.IV[:]).CryptBlocks(out, padded)
	return out, nil
}

// DecryptCBC decrypts ciphertext under cfg using AES-128-CBC and cfg's
// fixed IV, then strips PKCS#7 padding.
func (cfg AESConfig) DecryptCBC(ciphertext []byte) ([]byte, error) {
	return decryptCBC(cfg.Key[:], cfg.IV[:], ciphertext)
}

// DecryptCBCWithIV decrypts ciphertext under key using AES-128-CBC with an
// explicit IV, for callers (the suitemaster codec) that carry the IV
// alongside each ciphertext instead of fixing it per region.
func DecryptCBCWithIV(key, iv, ciphertext []byte) ([]byte, error) {
	return decryptCBC(key, iv, ciphertext)
}

// EncryptCBCWithIV mirrors DecryptCBCWithIV for encryption.
func EncryptCBCWithIV(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, twerrors.New(twerrors.KindCrypto, "aes.EncryptCBCWithIV", err)
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, twerrors.New(twerrors.KindCrypto, "aes.DecryptCBC", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, twerrors.New(twerrors.KindCrypto, "aes.DecryptCBC",
			fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext)))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, twerrors.New(twerrors.KindCrypto, "pkcs7Unpad", fmt.Errorf("empty payload"))
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > n || padLen > aes.BlockSize {
		return nil, twerrors.New(twerrors.KindCrypto, "pkcs7Unpad", fmt.Errorf("invalid padding length %d", padLen))
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, twerrors.New(twerrors.KindCrypto, "pkcs7Unpad", fmt.Errorf("corrupt padding"))
		}
	}
	return data[:n-padLen], nil
}
