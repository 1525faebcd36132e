package sekai

import (
	"fmt"

	"github.com/sergeii/twintail/internal/region"
)

// URLProvider builds every endpoint URL twintail's client calls, keeping
// the per-region path and host differences out of the client itself.
type URLProvider interface {
	// IssueSignature returns the CloudFront signature-cookie endpoint, or
	// "" if this region doesn't gate asset downloads behind one.
	IssueSignature() string
	GameVersion(appVersion, appHash string) string
	System() string
	User() string
	UserAuth(userID string) string
	AssetbundleInfo(assetVersion, assetHash, hostHash string, platform region.Platform) string
	Assetbundle(hostHash, assetbundlePath string) string
	AssetbundlePath(bundleName, hash string) string
	SuiteMasterFile(splitPath string) string
	Inherit(inheritID string, execute bool) string
	UserSuite(userID string) string
}

func NewURLProvider(r region.Region) URLProvider {
	if r == region.Global {
		return globalProvider{}
	}
	return japanProvider{}
}

type japanProvider struct{}

func (japanProvider) IssueSignature() string {
	return "https://issue.production.sekai.colorfulpalette.org/issue/signature"
}

func (japanProvider) GameVersion(appVersion, appHash string) string {
	return fmt.Sprintf("https://game-version.sekai.colorfulpalette.org/%s/%s", appVersion, appHash)
}

func (japanProvider) System() string {
	return "https://production-game-server.sekai.colorfulpalette.org/api/system"
}

func (japanProvider) User() string {
	return "https://production-game-server.sekai.colorfulpalette.org/api/user"
}

func (japanProvider) UserAuth(userID string) string {
	return fmt.Sprintf(
		"https://production-game-server.sekai.colorfulpalette.org/api/user/%s/auth?refreshUpdatedResources=False",
		userID,
	)
}

func (japanProvider) AssetbundleInfo(assetVersion, assetHash, hostHash string, platform region.Platform) string {
	return fmt.Sprintf(
		"https://production-%s-assetbundle-info.sekai.colorfulpalette.org/api/v2/assetbundle_info/%s/%s/os/%s",
		hostHash, assetVersion, assetHash, platform,
	)
}

func (japanProvider) Assetbundle(hostHash, assetbundlePath string) string {
	return fmt.Sprintf(
		"https://production-%s-assetbundle.sekai.colorfulpalette.org/%s", hostHash, assetbundlePath,
	)
}

func (japanProvider) AssetbundlePath(bundleName, hash string) string {
	return fmt.Sprintf("%s/%s", hash, bundleName)
}

func (japanProvider) SuiteMasterFile(splitPath string) string {
	return fmt.Sprintf("https://production-game-server.sekai.colorfulpalette.org/%s", splitPath)
}

func (japanProvider) Inherit(inheritID string, execute bool) string {
	return fmt.Sprintf(
		"https://production-game-server.sekai.colorfulpalette.org/api/inherit/%s?isExecuteInherit=%s",
		inheritID, boolFlag(execute),
	)
}

func (japanProvider) UserSuite(userID string) string {
	return fmt.Sprintf(
		"https://production-game-server.sekai.colorfulpalette.org/api/suite/user/%s/assetbundle", userID,
	)
}

type globalProvider struct{}

func (globalProvider) IssueSignature() string {
	return "" // Global has no CloudFront signature gate
}

func (globalProvider) GameVersion(appVersion, appHash string) string {
	return fmt.Sprintf("https://game-version.urls-en.com/%s/%s", appVersion, appHash)
}

func (globalProvider) System() string {
	return "https://game-server.urls-en.com/api/system"
}

func (globalProvider) User() string {
	return "https://game-server.urls-en.com/api/user"
}

func (globalProvider) UserAuth(userID string) string {
	return fmt.Sprintf("https://game-server.urls-en.com/api/user/%s/auth?refreshUpdatedResources=False", userID)
}

func (globalProvider) AssetbundleInfo(assetVersion, _ string, _ string, platform region.Platform) string {
	return fmt.Sprintf(
		"https://assetbundle-info.urls-en.com/api/v2/assetbundle_info/%s/os/%s", assetVersion, platform,
	)
}

func (globalProvider) Assetbundle(_ string, assetbundlePath string) string {
	return fmt.Sprintf("https://assetbundle.urls-en.com/%s", assetbundlePath)
}

func (globalProvider) AssetbundlePath(bundleName, hash string) string {
	return fmt.Sprintf("%s/%s", hash, bundleName)
}

func (globalProvider) SuiteMasterFile(splitPath string) string {
	return fmt.Sprintf("https://game-server.urls-en.com/%s", splitPath)
}

func (globalProvider) Inherit(inheritID string, execute bool) string {
	return fmt.Sprintf(
		"https://game-server.urls-en.com/api/inherit/%s?isExecuteInherit=%s&isAdult=True&tAge=16",
		inheritID, boolFlag(execute),
	)
}

func (globalProvider) UserSuite(userID string) string {
	return fmt.Sprintf("https://game-server.urls-en.com/api/suite/user/%s/assetbundle", userID)
}

func boolFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
