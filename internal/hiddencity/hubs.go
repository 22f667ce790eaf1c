package hiddencity

import (
	"sort"

	"github.com/dharmasatrya/farescout/internal/data"
)

type Hub struct {
	BeyondCities []string `yaml:"beyond_cities"`
	HubAirlines  []string `yaml:"hub_airlines"`
}

// Hubs maps an airport to the cities commonly reached by connecting there.
type Hubs map[string]Hub

// LoadHubs reads the hub table at path, or the embedded table when path is
// empty.
func LoadHubs(path string) (Hubs, error) {
	hubs := Hubs{}
	if err := data.Decode(path, data.HubConnections, &hubs); err != nil {
		return nil, err
	}
	return hubs, nil
}

// ViaHubs inverts the table: for each beyond city, the hubs that connect to
// it, sorted.
func (h Hubs) ViaHubs() map[string][]string {
	out := make(map[string][]string)
	for hub, entry := range h {
		for _, city := range entry.BeyondCities {
			out[city] = append(out[city], hub)
		}
	}
	for city := range out {
		sort.Strings(out[city])
	}
	return out
}
