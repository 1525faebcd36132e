// Package assetbundle implements the on-disk obfuscation the game applies
// to Unity assetbundles: a 4-byte magic followed by a header region whose
// bytes are XORed against a repeating 8-byte pattern, with the remainder
// of the bundle left untouched.
package assetbundle

import (
	"bytes"

	"github.com/sergeii/twintail/internal/twerrors"
)

const (
	headerSize  = 128
	patternUnit = 8
)

var (
	unityMagic = []byte("UnityFS")
	pattern    = bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00}, headerSize/patternUnit)
)

// flagHeader identifies which obfuscation flag byte (data[0] of the
// 4-byte magic) prepends a bundle, and how many header bytes it XORs.
type flagHeader byte

const (
	flagObfuscated  flagHeader = 0x10 // magic + 128-byte transformed header + payload
	flagMagicOnly   flagHeader = 0x20 // magic + untouched payload
)

// Decode reverses the on-disk obfuscation, returning the plain Unity
// bundle bytes. Data that already starts with Unity's own "UnityFS"
// signature is returned unchanged.
func Decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, unityMagic) {
		return data, nil
	}
	if len(data) < 4 {
		return nil, twerrors.New(twerrors.KindCodec, "assetbundle.Decode", errTooShort)
	}

	flag := flagHeader(data[0])
	body := data[4:]

	switch flag {
	case flagMagicOnly:
		return body, nil
	case flagObfuscated:
		return xorHeader(body), nil
	default:
		return nil, twerrors.New(twerrors.KindCodec, "assetbundle.Decode", errUnknownMagic)
	}
}

// Encode applies the obfuscation the server itself produces: flag 0x10
// with a 128-byte transformed header.
func Encode(plain []byte) []byte {
	out := make([]byte, 0, len(plain)+4)
	out = append(out, byte(flagObfuscated), 0, 0, 0)
	return append(out, xorHeader(plain)...)
}

// xorHeader flips the first min(headerSize, len(data)) bytes of data
// against the repeating pattern; the XOR is its own inverse so the same
// function encodes and decodes.
func xorHeader(data []byte) []byte {
	n := len(data)
	limit := headerSize
	if n < limit {
		limit = n
	}
	out := make([]byte, n)
	for i := 0; i < limit; i++ {
		out[i] = data[i] ^ pattern[i]
	}
	copy(out[limit:], data[limit:])
	return out
}
