package cryptoprim

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sergeii/twintail/internal/twerrors"
)

// SaveClaims is the payload shape carried by a save-data token: a single
// "data" claim holding the raw save JSON, plus the registered claims the
// server stamps on issue.
type SaveClaims struct {
	jwt.RegisteredClaims
	Data map[string]any `json:"data"`
}

// VerifyAndExtractSave verifies token's HS256 signature against key and
// returns the JSON-decoded "data" claim as a generic map.
func VerifyAndExtractSave(token string, key []byte) (map[string]any, error) {
	claims := &SaveClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, twerrors.New(twerrors.KindCrypto, "jwt.VerifyAndExtractSave", err)
	}
	if !parsed.Valid {
		return nil, twerrors.New(twerrors.KindCrypto, "jwt.VerifyAndExtractSave", fmt.Errorf("token failed validation"))
	}
	return claims.Data, nil
}

// SignInheritToken signs a small verification payload with an HS256 key,
// mirroring the inherit-token the client attaches to account-recovery
// requests.
func SignInheritToken(key []byte, inheritID, password string) (string, error) {
	claims := jwt.MapClaims{
		"inheritId": inheritID,
		"password":  password,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", twerrors.New(twerrors.KindCrypto, "jwt.SignInheritToken", err)
	}
	return signed, nil
}
