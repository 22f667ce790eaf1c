// Package dedup collapses offers that describe the same physical flight.
package dedup

import (
	"strings"

	"github.com/dharmasatrya/farescout/internal/models"
)

// Identity is the key under which two offers count as the same flight.
type Identity struct {
	Airline       string
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate string
	DepartureTime string
}

func Key(o models.Offer) Identity {
	return Identity{
		Airline:       strings.ToLower(strings.TrimSpace(o.Airline)),
		FlightNumber:  strings.ToUpper(strings.ReplaceAll(o.FlightNumber, " ", "")),
		Origin:        o.Origin,
		Destination:   o.Destination,
		DepartureDate: o.DepartureDate,
		DepartureTime: o.DepartureTime,
	}
}

// Deduplicate keeps one offer per Identity: the cheapest, or the first seen
// when prices tie. Survivors stay at the position of the first offer with
// their key, so output order follows input order. Offers without a flight
// number do not identify a physical flight and always pass through.
func Deduplicate(offers []models.Offer) []models.Offer {
	out := make([]models.Offer, 0, len(offers))
	index := make(map[Identity]int, len(offers))

	for _, o := range offers {
		if strings.TrimSpace(o.FlightNumber) == "" {
			out = append(out, o)
			continue
		}

		k := Key(o)
		if i, seen := index[k]; seen {
			if o.Price < out[i].Price {
				out[i] = o
			}
			continue
		}
		index[k] = len(out)
		out = append(out, o)
	}

	return out
}
