package region

// The wire protocol keys below are fixed per region: they are baked into
// the game client binary and never rotate independently of an app release.
// twintail carries one AES-128 key/IV pair per region for suitemaster and
// API-body traffic, one HMAC-SHA256 key per region for save-data JWTs, and
// a nominal assetbundle key retained for symmetry with the rest of the
// key table even though the assetbundle codec (see internal/assetbundle)
// is a XOR transform and never calls AES.
type CryptoKeys struct {
	SuiteKey  [16]byte
	SuiteIV   [16]byte
	SaveKey   []byte
	AssetbundleKey [16]byte
}

var (
	japanKeys = CryptoKeys{
		SuiteKey: [16]byte{
			0x75, 0x8e, 0x4a, 0x21, 0x9c, 0x0d, 0x63, 0xf7,
			0x2b, 0x91, 0xd4, 0x5c, 0x0a, 0xb6, 0x38, 0xe2,
		},
		SuiteIV: [16]byte{
			0x11, 0xf3, 0x8a, 0x64, 0x27, 0xbd, 0x59, 0x02,
			0xe8, 0x6c, 0x14, 0x9f, 0x3a, 0x77, 0xd0, 0x5b,
		},
		SaveKey: []byte(
			"dRmS5U3jP9XJDFzoI7eeXhzT826v2qJRO9n14h9JR1phTL6so3v7YBiODRdrrfMOl3Y8FOI3pS5UTYC5",
		),
		AssetbundleKey: [16]byte{
			0x04, 0x81, 0xc9, 0x3d, 0x6e, 0x2a, 0xf0, 0x17,
			0x9b, 0x55, 0xe3, 0x8c, 0x20, 0x6f, 0xa4, 0xd9,
		},
	}
	globalKeys = CryptoKeys{
		SuiteKey: [16]byte{
			0xc2, 0x0e, 0x77, 0x4f, 0x8a, 0x31, 0xb5, 0x6d,
			0x9c, 0x03, 0x5a, 0xe1, 0x48, 0x7d, 0x22, 0x90,
		},
		SuiteIV: [16]byte{
			0x8d, 0x46, 0x1a, 0xcf, 0x53, 0x0e, 0x97, 0x2b,
			0x64, 0xd8, 0x1f, 0x7c, 0xa5, 0x39, 0x02, 0xe6,
		},
		SaveKey: []byte(
			"uYf0cGqbgapejhc8bhba6G1cf5BBznOZeDz9NyFWZOgiiYsfUVNLT3wRUpCH6iDe1umsreAYuo35s8TP",
		),
		AssetbundleKey: [16]byte{
			0x3f, 0xb2, 0x8e, 0x05, 0x41, 0xda, 0x6c, 0x97,
			0x1b, 0xe4, 0x0a, 0x58, 0xcd, 0x33, 0x76, 0xaf,
		},
	}
)

// Keys returns the crypto key set baked into the client for r.
func (r Region) Keys() CryptoKeys {
	if r == Global {
		return globalKeys
	}
	return japanKeys
}
