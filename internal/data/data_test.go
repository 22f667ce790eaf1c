package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spotsFile struct {
	SweetSpots []struct {
		Program string `yaml:"program"`
		Miles   int    `yaml:"miles"`
	} `yaml:"sweet_spots"`
}

func TestDecodeEmbedded(t *testing.T) {
	var spots spotsFile
	require.NoError(t, Decode("", SweetSpots, &spots))
	require.NotEmpty(t, spots.SweetSpots)
	for _, s := range spots.SweetSpots {
		assert.NotEmpty(t, s.Program)
		assert.Positive(t, s.Miles)
	}

	var hubs map[string]any
	require.NoError(t, Decode("", HubConnections, &hubs))
	assert.Contains(t, hubs, "DEN")
}

func TestDecodeOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweet_spots:\n  - program: aeroplan\n    miles: 60000\n"), 0o600))

	var spots spotsFile
	require.NoError(t, Decode(path, SweetSpots, &spots))
	require.Len(t, spots.SweetSpots, 1)
	assert.Equal(t, "aeroplan", spots.SweetSpots[0].Program)
}

func TestDecodeMissingFile(t *testing.T) {
	var out map[string]any
	err := Decode(filepath.Join(t.TempDir(), "nope.yaml"), HubConnections, &out)
	assert.ErrorIs(t, err, ErrTableMissing)
}

func TestDecodeBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweet_spots: [\n"), 0o600))

	var spots spotsFile
	err := Decode(path, SweetSpots, &spots)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTableMissing)
}
