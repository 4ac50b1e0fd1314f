package naming_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanPierce/GeigerRNG/naming"
)

var when = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func TestBuildBaseName(t *testing.T) {
	got, err := naming.BuildBaseName(when, naming.DeviceGeiger, 512, 60)
	require.NoError(t, err)
	assert.Equal(t, "20260314T150926_geiger_s512_i60", got)

	got, err = naming.BuildBaseName(when, naming.DeviceSim, 2048, 1)
	require.NoError(t, err)
	assert.Equal(t, "20260314T150926_sim_s2048_i1", got)
}

func TestBuildBaseNameRejectsBadInput(t *testing.T) {
	_, err := naming.BuildBaseName(when, naming.Device("trng"), 512, 60)
	assert.Error(t, err)

	_, err = naming.BuildBaseName(when, naming.DeviceSim, 0, 60)
	assert.Error(t, err)

	_, err = naming.BuildBaseName(when, naming.DeviceSim, 512, 0)
	assert.Error(t, err)
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "base.bin", naming.WithExt("base", "bin"))
	assert.Equal(t, "base.bin", naming.WithExt("base", ".bin"))
	assert.Equal(t, "base", naming.WithExt("base", ""))
}

func TestBuildBinCSVPaths(t *testing.T) {
	bin, csv, err := naming.BuildBinCSVPaths("data", when, naming.DeviceSim, 256, 5)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "20260314T150926_sim_s256_i5.bin"), bin)
	assert.Equal(t, filepath.Join("data", "20260314T150926_sim_s256_i5.csv"), csv)

	bin, _, err = naming.BuildBinCSVPaths("", when, naming.DeviceSim, 256, 5)
	require.NoError(t, err)
	assert.Equal(t, "20260314T150926_sim_s256_i5.bin", bin)
}
