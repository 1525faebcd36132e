// Package sekai implements the private HTTP protocol the game speaks:
// wire DTOs, per-region URL layout, and the client that carries a
// handshake's accumulated session state into every subsequent request.
package sekai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sergeii/twintail/internal/cryptoprim"
	"github.com/sergeii/twintail/internal/region"
	"github.com/sergeii/twintail/internal/twerrors"
)

// Client is a single session's view of the game server: its outbound
// headers accumulate session state as the handshake progresses (see
// internal/handshake), and every API request/response body is transparently
// AES-CBC + MessagePack coded under the region's suite key. Assetbundle and
// suitemaster downloads are returned as the raw bytes the server sent.
type Client struct {
	HTTP      *http.Client
	URLs      URLProvider
	AES       cryptoprim.AESConfig
	Headers   http.Header
	Logger    *zerolog.Logger
	Platform  region.Platform
	InstallID string
}

// New builds a client for region r, impersonating creds, with the fixed
// wire headers the game client itself sends on every request. Each New
// call mints a fresh x-install-id, the way a game client would on a fresh
// device install; callers that need a stable ID across runs can override
// Client.InstallID and re-apply it to Headers before issuing requests.
func New(r region.Region, creds region.AppCredentials, logger *zerolog.Logger) *Client {
	keys := r.Keys()
	installID := uuid.New().String()

	headers := http.Header{}
	headers.Set(headerContentType, valueOctetStream)
	headers.Set(headerAccept, valueOctetStream)
	headers.Set(headerUserAgent, valueUserAgent)
	headers.Set(headerInstallID, installID)
	headers.Set(headerAppVersion, creds.AppVersion)
	headers.Set(headerAppHash, creds.AppHash)
	headers.Set(headerPlatform, creds.Platform.String())
	headers.Set(headerDeviceModel, valueDeviceModel)
	headers.Set(headerOS, valueOS)
	headers.Set(headerUnityVersion, valueUnityVersion)

	return &Client{
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		URLs:      NewURLProvider(r),
		AES:       cryptoprim.AESConfig{Key: keys.SuiteKey, IV: keys.SuiteIV},
		Headers:   headers,
		Logger:    logger,
		Platform:  creds.Platform,
		InstallID: installID,
	}
}

// IssueSignature performs the Japan-only CloudFront signature step,
// capturing the resulting set-cookie header for subsequent requests. It is
// a no-op on regions whose URLProvider.IssueSignature returns "".
func (c *Client) IssueSignature(ctx context.Context) error {
	url := c.URLs.IssueSignature()
	if url == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("ffa3bd6214f33fe73cb72fee2262bedb")))
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.IssueSignature", err)
	}
	c.applyHeaders(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.IssueSignature", err)
	}
	defer resp.Body.Close()

	if cookie := resp.Header.Get(headerSetCookie); cookie != "" {
		c.Headers.Set(headerCookie, cookie)
	}
	return checkStatus(resp)
}

func (c *Client) GetSystem(ctx context.Context) (SystemInfoResponse, error) {
	var out SystemInfoResponse
	err := c.getDecoded(ctx, c.URLs.System(), &out)
	return out, err
}

func (c *Client) GetGameVersion(ctx context.Context, appVersion, appHash string) (GameVersionResponse, error) {
	var out GameVersionResponse
	err := c.getDecoded(ctx, c.URLs.GameVersion(appVersion, appHash), &out)
	return out, err
}

// UserSignup registers a fresh device identity and returns the credential
// the caller must pass to UserLogin.
func (c *Client) UserSignup(ctx context.Context) (UserSignupResponse, error) {
	body := UserRequest{
		Platform:        c.Platform.String(),
		DeviceModel:     valueDeviceModel,
		OperatingSystem: valueOS,
	}
	var out UserSignupResponse
	err := c.postDecoded(ctx, c.URLs.User(), body, &out)
	return out, err
}

// UserLogin authenticates with a signup credential and promotes the
// resulting session token and asset/data versions into the client's
// outbound headers for every subsequent call.
func (c *Client) UserLogin(ctx context.Context, userID, credential string) (UserAuthResponse, error) {
	body := UserAuthRequest{Credential: credential}
	var out UserAuthResponse
	if err := c.putDecoded(ctx, c.URLs.UserAuth(userID), body, &out); err != nil {
		return out, err
	}
	c.Headers.Set(headerSessionToken, out.SessionToken)
	c.Headers.Set(headerAssetVersion, out.AssetVersion)
	c.Headers.Set(headerDataVersion, out.DataVersion)
	return out, nil
}

func (c *Client) GetAssetbundleInfo(
	ctx context.Context, assetVersion, assetHash, hostHash string,
) (AssetbundleInfo, error) {
	var out AssetbundleInfo
	url := c.URLs.AssetbundleInfo(assetVersion, assetHash, hostHash, c.Platform)
	err := c.getDecoded(ctx, url, &out)
	return out, err
}

// GetAssetbundle downloads one bundle's raw (still-obfuscated) bytes.
func (c *Client) GetAssetbundle(ctx context.Context, hostHash, bundleName, hash string) ([]byte, error) {
	path := c.URLs.AssetbundlePath(bundleName, hash)
	url := c.URLs.Assetbundle(hostHash, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, twerrors.New(twerrors.KindNetwork, "sekai.GetAssetbundle", err)
	}
	c.applyHeaders(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, twerrors.New(twerrors.KindNetwork, "sekai.GetAssetbundle", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, twerrors.New(twerrors.KindNetwork, "sekai.GetAssetbundle", err)
	}
	return data, nil
}

// GetSuitemasterFile downloads a single split-path entry's raw, still
// AES-CBC-encrypted bytes (see internal/suitemaster for the plaintext
// codec that follows).
func (c *Client) GetSuitemasterFile(ctx context.Context, splitPath string) ([]byte, error) {
	url := c.URLs.SuiteMasterFile(splitPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, twerrors.New(twerrors.KindNetwork, "sekai.GetSuitemasterFile", err)
	}
	c.applyHeaders(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, twerrors.New(twerrors.KindNetwork, "sekai.GetSuitemasterFile", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// GetUserInherit previews (execute=false) or executes (execute=true) an
// account-inherit transfer, signing the inherit-verify token the server
// expects in the x-inherit-id-verify-token header.
func (c *Client) GetUserInherit(
	ctx context.Context, inheritID, password string, execute bool, saveKey []byte,
) (UserInherit, error) {
	token, err := cryptoprim.SignInheritToken(saveKey, inheritID, password)
	if err != nil {
		return UserInherit{}, err
	}

	url := c.URLs.Inherit(inheritID, execute)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return UserInherit{}, twerrors.New(twerrors.KindNetwork, "sekai.GetUserInherit", err)
	}
	c.applyHeaders(req)
	req.Header.Set(headerInheritToken, token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return UserInherit{}, twerrors.New(twerrors.KindNetwork, "sekai.GetUserInherit", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return UserInherit{}, err
	}

	var out UserInherit
	if err := c.decodeBody(resp.Body, &out); err != nil {
		return UserInherit{}, err
	}
	return out, nil
}

// GetUserSuite fetches the account's current assetbundle version/hash pair,
// the per-user counterpart to the system-wide app-version table.
func (c *Client) GetUserSuite(ctx context.Context, userID string) (UserSuiteAssetbundle, error) {
	var out UserSuiteAssetbundle
	err := c.getDecoded(ctx, c.URLs.UserSuite(userID), &out)
	return out, err
}

func (c *Client) getDecoded(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.get", err)
	}
	return c.doDecoded(req, out)
}

func (c *Client) postDecoded(ctx context.Context, url string, body, out any) error {
	return c.bodyRequest(ctx, http.MethodPost, url, body, out)
}

func (c *Client) putDecoded(ctx context.Context, url string, body, out any) error {
	return c.bodyRequest(ctx, http.MethodPut, url, body, out)
}

func (c *Client) bodyRequest(ctx context.Context, method, url string, body, out any) error {
	encoded, err := c.encodeBody(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.bodyRequest", err)
	}
	return c.doDecoded(req, out)
}

func (c *Client) doDecoded(req *http.Request, out any) error {
	c.applyHeaders(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.doDecoded", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return c.decodeBody(resp.Body, out)
}

// encodeBody packs body as MessagePack then encrypts it under the
// client's region suite key, matching the request-body codec the client
// speaks on the wire.
func (c *Client) encodeBody(body any) ([]byte, error) {
	packed, err := msgpack.Marshal(body)
	if err != nil {
		return nil, twerrors.New(twerrors.KindCodec, "sekai.encodeBody", err)
	}
	return c.AES.EncryptCBC(packed)
}

// decodeBody decrypts an AES-CBC response body under the client's region
// suite key, then unpacks the MessagePack plaintext into out.
func (c *Client) decodeBody(body io.Reader, out any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return twerrors.New(twerrors.KindNetwork, "sekai.decodeBody", err)
	}
	if len(raw) == 0 {
		return nil
	}
	plaintext, err := c.AES.DecryptCBC(raw)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(plaintext, out); err != nil {
		return twerrors.New(twerrors.KindCodec, "sekai.decodeBody", err)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request) {
	for k, v := range c.Headers {
		if len(v) > 0 {
			req.Header.Set(k, v[0])
		}
	}
}

// checkStatus classifies an HTTP response's status into the taxonomy the
// pipeline's retry gate keys off: 426 is a version mismatch (fatal, aborts
// the whole run); 5xx is treated as a network fault since it reflects
// transient server trouble and is worth retrying; every other 4xx is a
// protocol error and is never retried.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUpgradeRequired:
		return twerrors.New(twerrors.KindVersionMismatch, "sekai.checkStatus",
			fmt.Errorf("server requires a newer app version (426)"))
	case resp.StatusCode >= 500:
		return twerrors.New(twerrors.KindNetwork, "sekai.checkStatus",
			fmt.Errorf("server error %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return twerrors.New(twerrors.KindProtocol, "sekai.checkStatus",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	default:
		return nil
	}
}
