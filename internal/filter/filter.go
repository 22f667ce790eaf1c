package filter

import (
	"strings"
	"time"

	"github.com/dharmasatrya/farescout/internal/models"
)

// Apply drops offers that fail any of the filters. Order is preserved.
func Apply(offers []models.Offer, filters *models.SearchFilters) []models.Offer {
	if filters == nil {
		return offers
	}

	result := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if matchesFilters(o, filters) {
			result = append(result, o)
		}
	}

	return result
}

func matchesFilters(o models.Offer, filters *models.SearchFilters) bool {
	if filters.PriceMax != nil && o.Price > *filters.PriceMax {
		return false
	}

	if filters.MaxStops != nil && o.Stops > *filters.MaxStops {
		return false
	}

	if len(filters.Airlines) > 0 && !matchesAirline(o, filters.Airlines) {
		return false
	}

	// unknown durations are kept
	if filters.MaxDuration != nil && o.DurationMinutes != nil && *o.DurationMinutes > *filters.MaxDuration {
		return false
	}

	if o.DepartureTime != "" {
		depTime, err := parseTimeOfDay(o.DepartureTime)
		if err == nil {
			if filters.DepartureTimeMin != nil {
				minTime, err := parseTimeOfDay(*filters.DepartureTimeMin)
				if err == nil && depTime < minTime {
					return false
				}
			}
			if filters.DepartureTimeMax != nil {
				maxTime, err := parseTimeOfDay(*filters.DepartureTimeMax)
				if err == nil && depTime > maxTime {
					return false
				}
			}
		}
	}

	return true
}

// matchesAirline accepts either the carrier name or its IATA code, which is
// taken from the flight number prefix.
func matchesAirline(o models.Offer, airlines []string) bool {
	for _, airline := range airlines {
		if strings.EqualFold(o.Airline, airline) {
			return true
		}
		if len(airline) == 2 && len(o.FlightNumber) > 2 && strings.EqualFold(o.FlightNumber[:2], airline) {
			return true
		}
	}
	return false
}

func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
