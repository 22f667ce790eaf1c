// Package hiddencity finds fares to a "beyond" city that connect through
// the traveller's real destination and undercut the direct fare there.
package hiddencity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/usage"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

const (
	DefaultMaxBeyond  = 6
	DefaultMinSavings = 30
)

type Config struct {
	MaxBeyond  int
	MinSavings float64
}

type Query struct {
	Origin        string
	Target        string
	DepartureDate string
}

type Result struct {
	Opportunities []models.HiddenCityOpportunity
	// Probed counts the beyond cities actually queried.
	Probed   int
	Warnings []string
}

// Matcher probes beyond cities for itineraries laying over at the target,
// one lookup at a time. When source is metered, an exhausted budget ends
// the search with whatever was found so far.
type Matcher struct {
	source fares.OfferSource
	hubs   Hubs
	config Config
}

func NewMatcher(source fares.OfferSource, hubs Hubs, cfg Config) *Matcher {
	if cfg.MaxBeyond <= 0 {
		cfg.MaxBeyond = DefaultMaxBeyond
	}
	if cfg.MinSavings < 0 {
		cfg.MinSavings = 0
	}
	return &Matcher{
		source: source,
		hubs:   hubs,
		config: cfg,
	}
}

func (m *Matcher) Search(ctx context.Context, q Query) (*Result, error) {
	res := &Result{}
	log := zap.L().With(zap.String("origin", q.Origin), zap.String("target", q.Target))

	hub, ok := m.hubs[q.Target]
	if !ok || len(hub.BeyondCities) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("no known connections through %s", q.Target))
		return res, nil
	}

	direct, err := m.source.DirectPrice(ctx, fares.Query{
		Origin:        q.Origin,
		Destination:   q.Target,
		DepartureDate: q.DepartureDate,
	})
	if errors.Is(err, usage.ErrBudgetExhausted) {
		return m.stop(res), nil
	}
	if err != nil || direct <= 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("direct price unavailable, skipping hidden-city search", zap.Error(err))
		res.Warnings = append(res.Warnings, fmt.Sprintf("direct price %s-%s unavailable", q.Origin, q.Target))
		return res, nil
	}

	for _, beyond := range m.beyondCities(q, hub) {
		offers, err := m.source.Offers(ctx, fares.Query{
			Origin:        q.Origin,
			Destination:   beyond,
			DepartureDate: q.DepartureDate,
		})
		if errors.Is(err, usage.ErrBudgetExhausted) {
			return m.stop(res), nil
		}
		res.Probed++
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("beyond city lookup failed", zap.String("beyond", beyond), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("lookup %s-%s failed", q.Origin, beyond))
			continue
		}

		for _, o := range offers {
			if opp, ok := m.match(q, beyond, direct, o); ok {
				res.Opportunities = append(res.Opportunities, opp)
			}
		}
	}

	sort.SliceStable(res.Opportunities, func(i, j int) bool {
		return res.Opportunities[i].Savings > res.Opportunities[j].Savings
	})

	log.Debug("hidden-city search done",
		zap.Int("probed", res.Probed),
		zap.Int("found", len(res.Opportunities)),
	)
	return res, nil
}

// beyondCities returns at most MaxBeyond candidates, skipping the route's
// own endpoints.
func (m *Matcher) beyondCities(q Query, hub Hub) []string {
	var out []string
	for _, c := range hub.BeyondCities {
		if len(out) == m.config.MaxBeyond {
			break
		}
		if c == q.Origin || c == q.Target {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m *Matcher) match(q Query, beyond string, direct float64, o models.Offer) (models.HiddenCityOpportunity, bool) {
	if !o.HasLayoverAt(q.Target) || o.Price <= 0 {
		return models.HiddenCityOpportunity{}, false
	}
	savings := direct - o.Price
	if savings < m.config.MinSavings {
		return models.HiddenCityOpportunity{}, false
	}

	risk, factors := m.hubs.AssessRisk(q.Target, o.Airline, beyond)
	return models.HiddenCityOpportunity{
		Origin:              q.Origin,
		RealDestination:     q.Target,
		TicketedDestination: beyond,
		LayoverAirport:      q.Target,
		DepartureDate:       q.DepartureDate,
		Airline:             o.Airline,
		FlightNumber:        o.FlightNumber,
		DepartureTime:       o.DepartureTime,
		DirectPrice:         direct,
		HiddenCityPrice:     o.Price,
		Savings:             currency.Round2(savings),
		SavingsPercent:      currency.Percent(savings, direct, 1),
		RiskScore:           risk,
		RiskFactors:         factors,
		BookingURL:          o.BookingURL,
		Confidence:          o.Confidence,
		DataSource:          o.DataSource,
	}, true
}

// stop ends a search on an exhausted budget, keeping what was found so far.
func (m *Matcher) stop(res *Result) *Result {
	zap.L().Warn("external call budget exhausted, returning partial results",
		zap.Int("found", len(res.Opportunities)),
	)
	res.Warnings = append(res.Warnings, usage.ErrBudgetExhausted.Error())
	sort.SliceStable(res.Opportunities, func(i, j int) bool {
		return res.Opportunities[i].Savings > res.Opportunities[j].Savings
	})
	return res
}
