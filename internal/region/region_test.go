package region_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sergeii/twintail/internal/region"
)

func TestParseRegionAcceptsAliases(t *testing.T) {
	r, err := region.ParseRegion("jp")
	assert.NoError(t, err)
	assert.Equal(t, region.Japan, r)

	r, err = region.ParseRegion("en")
	assert.NoError(t, err)
	assert.Equal(t, region.Global, r)
}

func TestParseRegionRejectsUnknown(t *testing.T) {
	_, err := region.ParseRegion("mars")
	assert.Error(t, err)
}

func TestParsePlatformRejectsUnknown(t *testing.T) {
	_, err := region.ParsePlatform("windows")
	assert.Error(t, err)
}

func TestRegionKeysDifferByRegion(t *testing.T) {
	jp := region.Japan.Keys()
	global := region.Global.Keys()
	assert.NotEqual(t, jp.SuiteKey, global.SuiteKey)
	assert.NotEqual(t, jp.SaveKey, global.SaveKey)
}
