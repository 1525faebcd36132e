package twerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sergeii/twintail/internal/twerrors"
)

func TestErrorFormatsWithOp(t *testing.T) {
	err := twerrors.New(twerrors.KindNetwork, "sekai.GetSystem", errors.New("connection refused"))
	assert.Equal(t, "sekai.GetSystem: network: connection refused", err.Error())
}

func TestErrorUnwrapsToUnderlyingCause(t *testing.T) {
	cause := errors.New("boom")
	err := twerrors.New(twerrors.KindCrypto, "op", cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOfExtractsWrappedKind(t *testing.T) {
	err := fmt.Errorf("wrapping: %w", twerrors.New(twerrors.KindVersionMismatch, "op", errors.New("too old")))
	assert.Equal(t, twerrors.KindVersionMismatch, twerrors.KindOf(err))
}

func TestKindOfDefaultsToIOForUnclassifiedErrors(t *testing.T) {
	assert.Equal(t, twerrors.KindIO, twerrors.KindOf(errors.New("plain error")))
}
