package handshake_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sergeii/twintail/internal/cryptoprim"
	"github.com/sergeii/twintail/internal/handshake"
	"github.com/sergeii/twintail/internal/region"
	"github.com/sergeii/twintail/internal/sekai"
)

type fakeURLs struct{ base string }

func (f fakeURLs) IssueSignature() string                     { return "" }
func (f fakeURLs) GameVersion(_, _ string) string              { return f.base + "/game-version" }
func (f fakeURLs) System() string                              { return f.base + "/system" }
func (f fakeURLs) User() string                                { return f.base + "/user" }
func (f fakeURLs) UserAuth(userID string) string               { return f.base + "/user/" + userID + "/auth" }
func (f fakeURLs) AssetbundleInfo(_, _, _ string, _ region.Platform) string {
	return f.base + "/assetbundle-info"
}
func (f fakeURLs) Assetbundle(_, path string) string        { return f.base + "/assetbundle/" + path }
func (f fakeURLs) AssetbundlePath(name, hash string) string { return hash + "/" + name }
func (f fakeURLs) SuiteMasterFile(path string) string       { return f.base + "/" + path }
func (f fakeURLs) Inherit(id string, _ bool) string         { return f.base + "/inherit/" + id }
func (f fakeURLs) UserSuite(userID string) string           { return f.base + "/suite/" + userID }

func TestAuthenticateWalksToAuthenticatedState(t *testing.T) {
	aes := cryptoprim.AESConfig{Key: region.Japan.Keys().SuiteKey, IV: region.Japan.Keys().SuiteIV}

	mux := http.NewServeMux()
	mux.HandleFunc("/system", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.SystemInfoResponse{
			AppVersions: []sekai.AppVersionEntry{{AppVersion: "4.0.0", AssetVersion: "9.9.9"}},
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.UserSignupResponse{
			UserRegistration: sekai.UserRegistration{UserID: "user-1"},
			Credential:       "cred-xyz",
		})
	})
	mux.HandleFunc("/user/user-1/auth", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.UserAuthResponse{
			SessionToken:          "session-abc",
			AssetVersion:          "1.0.0",
			DataVersion:           "2.0.0",
			SuiteMasterSplitPath:  []string{"suite/0001_00"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := sekai.New(region.Japan, region.AppCredentials{AppVersion: "4.0.0", AppHash: "deadbeef", Platform: region.Android}, nil)
	client.URLs = fakeURLs{base: srv.URL}

	resolver := handshake.NewResolver(client, nil)
	assert.Equal(t, handshake.Fresh, resolver.State())

	sess, auth, err := resolver.Authenticate(context.Background(), "4.0.0")
	require.NoError(t, err)
	assert.Equal(t, handshake.Authenticated, resolver.State())
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "session-abc", sess.SessionToken)
	assert.NotEmpty(t, sess.InstallID)
	assert.Equal(t, []string{"suite/0001_00"}, auth.SuiteMasterSplitPath)
}

func TestResolveAssetInfoFillsMissingHostAndAssetHash(t *testing.T) {
	aes := cryptoprim.AESConfig{Key: region.Japan.Keys().SuiteKey, IV: region.Japan.Keys().SuiteIV}

	mux := http.NewServeMux()
	mux.HandleFunc("/game-version", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.GameVersionResponse{AssetbundleHostHash: "host-hash-1"})
	})
	mux.HandleFunc("/suite/user-1", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.UserSuiteAssetbundle{AssetVersion: "9.9.9", AssetHash: "hash-1"})
	})
	mux.HandleFunc("/assetbundle-info", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.AssetbundleInfo{
			HostHash: "host-hash-1",
			Bundles:  map[string]sekai.Bundle{"a": {BundleName: "a"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := sekai.New(region.Japan, region.AppCredentials{AppVersion: "4.0.0", AppHash: "deadbeef", Platform: region.Android}, nil)
	client.URLs = fakeURLs{base: srv.URL}

	resolver := handshake.NewResolver(client, nil)
	sess := region.SessionContext{UserID: "user-1"}

	info, err := resolver.ResolveAssetInfo(context.Background(), &sess, "4.0.0", "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, handshake.AssetResolved, resolver.State())
	assert.Equal(t, "host-hash-1", sess.HostHash)
	assert.Equal(t, "9.9.9", sess.AssetVersion)
	assert.Equal(t, "hash-1", sess.AssetHash)
	assert.Contains(t, info.Bundles, "a")
}

func TestAuthenticateAbortsOnVersionMismatch(t *testing.T) {
	aes := cryptoprim.AESConfig{Key: region.Japan.Keys().SuiteKey, IV: region.Japan.Keys().SuiteIV}

	mux := http.NewServeMux()
	mux.HandleFunc("/system", func(w http.ResponseWriter, r *http.Request) {
		writeEncoded(t, w, aes, sekai.SystemInfoResponse{
			AppVersions: []sekai.AppVersionEntry{{AppVersion: "5.0.0", AssetVersion: "9.9.9"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := sekai.New(region.Japan, region.AppCredentials{AppVersion: "4.0.0", AppHash: "deadbeef", Platform: region.Android}, nil)
	client.URLs = fakeURLs{base: srv.URL}

	resolver := handshake.NewResolver(client, nil)
	_, _, err := resolver.Authenticate(context.Background(), "4.0.0")
	require.Error(t, err)
	assert.Equal(t, handshake.SystemKnown, resolver.State())
}

func writeEncoded(t *testing.T, w http.ResponseWriter, aes cryptoprim.AESConfig, v any) {
	t.Helper()
	packed, err := msgpack.Marshal(v)
	require.NoError(t, err)
	ciphertext, err := aes.EncryptCBC(packed)
	require.NoError(t, err)
	_, err = w.Write(ciphertext)
	require.NoError(t, err)
}
