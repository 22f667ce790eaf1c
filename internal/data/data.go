// Package data embeds the static reference tables (award sweet spots, hub
// connections, alternate airports) and decodes them, optionally from an
// override file on disk.
package data

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed sweet_spots.yaml
	SweetSpots []byte

	//go:embed hub_connections.yaml
	HubConnections []byte

	//go:embed airport_alternates.yaml
	AirportAlternates []byte
)

var ErrTableMissing = errors.New("static data table missing")

// Decode unmarshals the table at path into out. An empty path decodes the
// embedded fallback instead. A path that does not exist yields an error
// wrapping ErrTableMissing so callers can degrade instead of failing.
func Decode(path string, fallback []byte, out any) error {
	raw := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return eris.Wrapf(ErrTableMissing, "data: %s", path)
			}
			return eris.Wrapf(err, "data: read %s", path)
		}
		raw = b
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return eris.Wrap(err, "data: decode yaml")
	}
	return nil
}
