// Package awards values award redemptions against cash fares and works out
// how a traveller's point balances can pay for them.
package awards

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/data"
	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

// Cash-equivalent sources, from most to least trustworthy.
const (
	SourceValidated = "validated"
	SourceScaled    = "cash-scaled"
	SourceEstimated = "estimated"
)

const (
	defaultTypicalCash = 5000
	firstFromBusiness  = 1.6
	defaultMultiplier  = 3.0
	premiumTaxes       = 150
	economyTaxes       = 75
)

var ErrDataFileMissing = data.ErrTableMissing

// cabin multipliers applied to an economy fare
var economyMultiplier = map[string]float64{
	"economy":  1,
	"business": 3.5,
	"first":    5.5,
	"suites":   7,
	"upper":    3.2,
}

type SweetSpot struct {
	Program     string  `yaml:"program"`
	Airline     string  `yaml:"airline"`
	Route       string  `yaml:"route"`
	Class       string  `yaml:"class"`
	Miles       int     `yaml:"miles"`
	TypicalCash float64 `yaml:"typical_cash"`
	Notes       string  `yaml:"notes"`
}

type sweetSpotTable struct {
	SweetSpots []SweetSpot `yaml:"sweet_spots"`
}

// LoadSweetSpots reads the table at path, or the embedded table when path
// is empty.
func LoadSweetSpots(path string) ([]SweetSpot, error) {
	var table sweetSpotTable
	if err := data.Decode(path, data.SweetSpots, &table); err != nil {
		return nil, err
	}
	return table.SweetSpots, nil
}

type Query struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    *string
	Program       string
	Profile       *models.UserProfile
}

func (q Query) isRoundTrip() bool {
	return q.ReturnDate != nil && *q.ReturnDate != ""
}

type Result struct {
	Opportunities []models.AwardOpportunity
	Warnings      []string
}

type Engine struct {
	spots   []SweetSpot
	loadErr error
	cash    fares.OfferSource
}

// NewEngine loads the sweet-spot table. A missing table is not fatal: the
// engine answers every search with no results and a warning. cash may be
// nil, in which case every valuation falls back to the table's typical
// cash price.
func NewEngine(sweetSpotsFile string, cash fares.OfferSource) *Engine {
	spots, err := LoadSweetSpots(sweetSpotsFile)
	if err != nil {
		zap.L().Warn("award sweet spots unavailable", zap.String("path", sweetSpotsFile), zap.Error(err))
	}
	return &Engine{spots: spots, loadErr: err, cash: cash}
}

// NewEngineWithSpots builds an engine over an in-memory table.
func NewEngineWithSpots(spots []SweetSpot, cash fares.OfferSource) *Engine {
	return &Engine{spots: spots, cash: cash}
}

// Relevant returns the sweet spots whose route bucket covers the route,
// restricted to program when it is non-empty.
func (e *Engine) Relevant(origin, destination, program string) []SweetSpot {
	routeType := RouteType(origin, destination)
	want := ""
	if program != "" {
		want = Canonical(program)
	}

	var out []SweetSpot
	for _, s := range e.spots {
		if !routeMatches(s.Route, routeType) {
			continue
		}
		if want != "" && Canonical(s.Program) != want {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (e *Engine) Search(ctx context.Context, q Query) (*Result, error) {
	res := &Result{}
	if e.loadErr != nil {
		res.Warnings = append(res.Warnings, "award sweet spots unavailable: "+e.loadErr.Error())
		return res, nil
	}

	spots := e.Relevant(q.Origin, q.Destination, q.Program)
	if len(spots) == 0 {
		return res, nil
	}

	cashByClass, err := e.cashPrices(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "awards: cash prices")
		}
		res.Warnings = append(res.Warnings, "cash prices unavailable, using typical values: "+err.Error())
	}

	multiplier := 1
	tripType := models.TripOneWay
	if q.isRoundTrip() {
		multiplier = 2
		tripType = models.TripRoundTrip
	}

	for _, s := range spots {
		class := strings.ToLower(s.Class)
		if class == "" {
			class = "business"
		}
		cash, confidence, source := CashEquivalent(s, cashByClass)

		opp := models.AwardOpportunity{
			Program:          s.Program,
			Airline:          s.Airline,
			CabinClass:       class,
			Origin:           q.Origin,
			Destination:      q.Destination,
			Route:            s.Route,
			DepartureDate:    q.DepartureDate,
			TripType:         tripType,
			MilesRequired:    s.Miles * multiplier,
			TaxesFees:        taxes(class) * float64(multiplier),
			CashEquivalent:   cash * float64(multiplier),
			ValuePerPoint:    ValuePerPoint(cash, s.Miles),
			Confidence:       confidence,
			Source:           source,
			BookingURL:       BookingURL(s.Program, q.Origin, q.Destination, q.DepartureDate),
			Notes:            s.Notes,
			TransferPartners: TransferPaths(s.Program),
		}
		opp.Recommendation = Recommendation(opp.ValuePerPoint, source)
		if q.isRoundTrip() {
			opp.ReturnDate = q.ReturnDate
		}
		if q.Profile != nil {
			opp.BookingPaths = BookingPaths(s.Program, opp.MilesRequired, q.Profile)
			canBook := anyAffordable(opp.BookingPaths)
			opp.UserCanBook = &canBook
		}
		res.Opportunities = append(res.Opportunities, opp)
	}

	sort.SliceStable(res.Opportunities, func(i, j int) bool {
		return res.Opportunities[i].ValuePerPoint > res.Opportunities[j].ValuePerPoint
	})

	return res, nil
}

// cashPrices returns the cheapest cash fare seen per cabin.
func (e *Engine) cashPrices(ctx context.Context, q Query) (map[string]float64, error) {
	if e.cash == nil {
		return nil, nil
	}
	prices, err := fares.CashPrices(ctx, e.cash, fares.Query{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartureDate,
		ReturnDate:    q.ReturnDate,
	}, "economy", "business")
	if err != nil {
		return nil, err
	}

	byClass := make(map[string]float64)
	for _, p := range prices {
		class := strings.ToLower(p.CabinClass)
		if cur, ok := byClass[class]; !ok || p.Price < cur {
			byClass[class] = p.Price
		}
	}
	return byClass, nil
}

// CashEquivalent prices one sweet spot from the cheapest cash fare per
// cabin, falling back from an exact cabin match, to first class scaled
// from business, to any cabin scaled from economy, to the table's typical
// cash value.
func CashEquivalent(s SweetSpot, cashByClass map[string]float64) (float64, models.Confidence, string) {
	class := strings.ToLower(s.Class)
	if class == "" {
		class = "business"
	}

	if price, ok := cashByClass[class]; ok {
		return price, models.ConfidenceHigh, SourceValidated
	}
	if business, ok := cashByClass["business"]; ok && (class == "first" || class == "suites") {
		return float64(int(business * firstFromBusiness)), models.ConfidenceMedium, SourceScaled
	}
	if economy, ok := cashByClass["economy"]; ok {
		m, known := economyMultiplier[class]
		if !known {
			m = defaultMultiplier
		}
		return float64(int(economy * m)), models.ConfidenceMedium, SourceScaled
	}

	typical := s.TypicalCash
	if typical == 0 {
		typical = defaultTypicalCash
	}
	return typical, models.ConfidenceLow, SourceEstimated
}

// ValuePerPoint returns cents of cash value per mile, to two decimals. Zero
// miles yield zero.
func ValuePerPoint(cash float64, miles int) float64 {
	if miles <= 0 {
		return 0
	}
	return currency.Round2(cash / float64(miles) * 100)
}

func taxes(class string) float64 {
	switch class {
	case "business", "first", "suites", "upper":
		return premiumTaxes
	default:
		return economyTaxes
	}
}
