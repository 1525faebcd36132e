package sekai

// Wire header names and fixed values. These reproduce the game client's
// own HTTP headers byte for byte; changing any of them breaks compatibility
// with the live servers.
const (
	headerContentType    = "content-type"
	headerAccept         = "accept"
	headerUserAgent      = "user-agent"
	headerInstallID      = "x-install-id"
	headerAppVersion     = "x-app-version"
	headerAppHash        = "x-app-hash"
	headerPlatform       = "x-platform"
	headerDeviceModel    = "x-devicemodel"
	headerOS             = "x-operatingsystem"
	headerUnityVersion   = "x-unity-version"
	headerCookie         = "cookie"
	headerSetCookie      = "set-cookie"
	headerSessionToken   = "x-session-token"
	headerInheritToken   = "x-inherit-id-verify-token"
	headerDataVersion    = "x-data-version"
	headerAssetVersion   = "x-asset-version"
)

const (
	valueOctetStream  = "application/octet-stream"
	valueUserAgent    = "UnityPlayer/2022.3.21f1 (UnityWebRequest/1.0, libcurl/8.5.0-DEV)"
	valueDeviceModel  = "39phone"
	valueOS           = "39os"
	valueUnityVersion = "2022.3.21f1"
)
