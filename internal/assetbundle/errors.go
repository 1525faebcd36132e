package assetbundle

import "errors"

var (
	errTooShort     = errors.New("assetbundle: payload shorter than the magic header")
	errUnknownMagic = errors.New("assetbundle: unrecognized magic flag byte")
)
