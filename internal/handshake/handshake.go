// Package handshake drives a session through the states a fresh client
// must pass before it can fetch any asset: signup, login, and resolving
// whichever version identifiers (host hash, asset hash, asset version)
// the caller didn't already supply.
package handshake

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sergeii/twintail/internal/region"
	"github.com/sergeii/twintail/internal/sekai"
	"github.com/sergeii/twintail/internal/twerrors"
)

// State names where a session sits in the handshake state machine, mostly
// for logging and test assertions.
type State int

const (
	Fresh State = iota
	SystemKnown
	UserRegistered
	Authenticated
	AssetResolved
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case SystemKnown:
		return "system_known"
	case UserRegistered:
		return "user_registered"
	case Authenticated:
		return "authenticated"
	case AssetResolved:
		return "asset_resolved"
	default:
		return "unknown"
	}
}

// Resolver carries a client through signup, login and manifest-version
// resolution, producing a fully populated SessionContext.
type Resolver struct {
	Client *sekai.Client
	Logger *zerolog.Logger
	state  State
}

func NewResolver(c *sekai.Client, logger *zerolog.Logger) *Resolver {
	return &Resolver{Client: c, Logger: logger, state: Fresh}
}

func (r *Resolver) State() State { return r.state }

func (r *Resolver) log() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Authenticate walks system->signup->login, returning the populated
// session context and the raw login response (callers that need the
// suitemaster split-path list read it from there). It does not resolve
// host hash or asset manifest hash; call ResolveAssetInfo afterwards if
// needed.
//
// The first step checks the server's system info against appVersion and
// aborts with VersionMismatch if they disagree, the same guard the game
// client itself enforces before it will even attempt to sign up.
func (r *Resolver) Authenticate(
	ctx context.Context, appVersion string,
) (region.SessionContext, sekai.UserAuthResponse, error) {
	sysInfo, err := r.Client.GetSystem(ctx)
	if err != nil {
		return region.SessionContext{}, sekai.UserAuthResponse{}, err
	}
	r.state = SystemKnown

	var matchedAssetVersion string
	var matched bool
	for _, v := range sysInfo.AppVersions {
		if v.AppVersion == appVersion {
			matchedAssetVersion = v.AssetVersion
			matched = true
			break
		}
	}
	if !matched {
		return region.SessionContext{}, sekai.UserAuthResponse{}, twerrors.New(
			twerrors.KindVersionMismatch, "handshake.Authenticate",
			fmt.Errorf("app version %s is not recognized by the server", appVersion),
		)
	}

	if err := r.Client.IssueSignature(ctx); err != nil {
		return region.SessionContext{}, sekai.UserAuthResponse{}, err
	}

	signup, err := r.Client.UserSignup(ctx)
	if err != nil {
		return region.SessionContext{}, sekai.UserAuthResponse{}, err
	}
	r.state = UserRegistered
	r.log().Debug().Str("user_id", signup.UserRegistration.UserID).Msg("user registered")

	auth, err := r.Client.UserLogin(ctx, signup.UserRegistration.UserID, signup.Credential)
	if err != nil {
		return region.SessionContext{}, sekai.UserAuthResponse{}, err
	}
	r.state = Authenticated

	sess := region.SessionContext{
		SessionToken: auth.SessionToken,
		UserID:       signup.UserRegistration.UserID,
		AssetVersion: auth.AssetVersion,
		DataVersion:  auth.DataVersion,
		AssetHash:    auth.AssetHash,
		InstallID:    r.Client.InstallID,
	}
	if sess.AssetVersion == "" {
		sess.AssetVersion = matchedAssetVersion
	}
	return sess, auth, nil
}

// ResolveAssetInfo fills in whichever of hostHash/assetVersion/assetHash
// the session doesn't already carry, then fetches the assetbundle manifest.
func (r *Resolver) ResolveAssetInfo(
	ctx context.Context, sess *region.SessionContext, appVersion, appHash string,
) (sekai.AssetbundleInfo, error) {
	if sess.HostHash == "" {
		gv, err := r.Client.GetGameVersion(ctx, appVersion, appHash)
		if err != nil {
			return sekai.AssetbundleInfo{}, err
		}
		sess.HostHash = gv.AssetbundleHostHash
	}
	if sess.AssetVersion == "" || sess.AssetHash == "" {
		userSuite, err := r.Client.GetUserSuite(ctx, sess.UserID)
		if err != nil {
			return sekai.AssetbundleInfo{}, err
		}
		if sess.AssetVersion == "" {
			sess.AssetVersion = userSuite.AssetVersion
		}
		if sess.AssetHash == "" {
			sess.AssetHash = userSuite.AssetHash
		}
	}

	info, err := r.Client.GetAssetbundleInfo(ctx, sess.AssetVersion, sess.AssetHash, sess.HostHash)
	if err != nil {
		return sekai.AssetbundleInfo{}, err
	}
	r.state = AssetResolved
	return info, nil
}
