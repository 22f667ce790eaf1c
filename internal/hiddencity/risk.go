package hiddencity

import (
	"fmt"

	"github.com/dharmasatrya/farescout/internal/airports"
	"github.com/dharmasatrya/farescout/internal/models"
)

const (
	// hubs with more beyond cities than this start at medium risk
	wellConnectedHub = 8
	// beyond cities closer than this many miles to the layover look suspicious
	suspiciousDistance = 200
)

var largeHubs = map[string]bool{
	"DEN": true, "ORD": true, "ATL": true, "LAX": true, "JFK": true, "DFW": true, "SEA": true,
}

var strictAirlines = map[string]bool{
	"United": true, "Delta": true, "American": true,
}

var structuralRisks = []string{
	"Must book one-way only",
	"No checked bags (will go to final destination)",
	"Cannot use frequent flyer number (may flag account)",
}

var trailingRisks = []string{
	"If flight cancelled, rebooking goes to final destination",
	"Airline may ban for repeated violations",
}

func escalate(r models.RiskLevel) models.RiskLevel {
	if r == models.RiskLow {
		return models.RiskMedium
	}
	return models.RiskHigh
}

// AssessRisk scores deplaning at target from a ticket on airline to beyond.
func (h Hubs) AssessRisk(target, airline, beyond string) (models.RiskLevel, []string) {
	factors := append([]string(nil), structuralRisks...)

	var level models.RiskLevel
	switch {
	case largeHubs[target]:
		level = models.RiskLow
	case len(h[target].BeyondCities) > wellConnectedHub:
		level = models.RiskMedium
	default:
		level = models.RiskHigh
		factors = append(factors, "Small airport with limited connections")
	}

	if strictAirlines[airline] {
		level = escalate(level)
		factors = append(factors, fmt.Sprintf("%s may enforce fare rules strictly", airline))
	}

	if d, ok := airports.Distance(target, beyond); ok && d < suspiciousDistance {
		level = escalate(level)
		factors = append(factors, "Final destination very close to layover - may raise suspicion")
	}

	return level, append(factors, trailingRisks...)
}
