// Package altairports searches nearby alternate airports and prices the
// ground transport needed to use them.
package altairports

import (
	"github.com/dharmasatrya/farescout/internal/data"
	"github.com/dharmasatrya/farescout/internal/models"
)

// Ground transport assumed when no table entry covers an airport pair.
const (
	DefaultTransportCost    = 75
	DefaultTransportMinutes = 90
	DefaultTransportMethod  = "taxi/uber"
)

type alternateEntry struct {
	Code       string   `yaml:"code"`
	Alternates []string `yaml:"alternates"`
}

type transportEntry struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Cost        float64 `yaml:"cost"`
	TimeMinutes int     `yaml:"time_minutes"`
	Method      string  `yaml:"method"`
}

type tableFile struct {
	Airports  []alternateEntry `yaml:"airports"`
	Transport []transportEntry `yaml:"transport"`
}

type Table struct {
	alternates map[string][]string
	transport  map[[2]string]transportEntry
}

// LoadTable reads the alternates table from path, or the embedded copy when
// path is empty.
func LoadTable(path string) (*Table, error) {
	var raw tableFile
	if err := data.Decode(path, data.AirportAlternates, &raw); err != nil {
		return nil, err
	}

	t := &Table{
		alternates: make(map[string][]string, len(raw.Airports)),
		transport:  make(map[[2]string]transportEntry, len(raw.Transport)),
	}
	for _, a := range raw.Airports {
		t.alternates[a.Code] = a.Alternates
	}
	for _, tr := range raw.Transport {
		t.transport[[2]string{tr.From, tr.To}] = tr
	}
	return t, nil
}

func (t *Table) Alternates(code string) []string {
	if t == nil {
		return nil
	}
	return t.alternates[code]
}

// Leg returns the ground connection between two airports, matching the
// table in either direction.
func (t *Table) Leg(from, to string) models.GroundLeg {
	leg := models.GroundLeg{
		From:        from,
		To:          to,
		Cost:        DefaultTransportCost,
		TimeMinutes: DefaultTransportMinutes,
		Method:      DefaultTransportMethod,
	}
	if t == nil {
		return leg
	}
	tr, ok := t.transport[[2]string{from, to}]
	if !ok {
		tr, ok = t.transport[[2]string{to, from}]
	}
	if ok {
		leg.Cost = tr.Cost
		leg.TimeMinutes = tr.TimeMinutes
		leg.Method = tr.Method
	}
	return leg
}

// GroundTransport prices getting from the requested airports to the ones
// actually flown. Legs are nil when no transfer is needed.
func (t *Table) GroundTransport(requestedOrigin, requestedDest, flownOrigin, flownDest string) models.GroundTransport {
	var gt models.GroundTransport
	if flownOrigin != requestedOrigin {
		leg := t.Leg(requestedOrigin, flownOrigin)
		gt.Origin = &leg
		gt.TotalCost += leg.Cost
		gt.TotalTimeMinutes += leg.TimeMinutes
	}
	if flownDest != requestedDest {
		leg := t.Leg(flownDest, requestedDest)
		gt.Destination = &leg
		gt.TotalCost += leg.Cost
		gt.TotalTimeMinutes += leg.TimeMinutes
	}
	return gt
}

// Recommendation describes whether a transfer is worth its cost and time.
func Recommendation(cost float64, minutes int) string {
	switch {
	case cost == 0:
		return "Direct route - no additional costs"
	case cost < 50 && minutes < 60:
		return "Good alternative - low cost and time penalty"
	case cost < 100 && minutes < 120:
		return "Consider if flight savings > $100"
	default:
		return "High transport cost/time - only worthwhile for major savings"
	}
}
