package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dharmasatrya/farescout/internal/models"
)

// Strategy identifies one search strategy. The set is closed; ParseStrategy
// rejects anything else.
type Strategy string

const (
	StrategyCashFare    Strategy = "google-flights"
	StrategyBudget      Strategy = "budget"
	StrategyAwards      Strategy = "awards"
	StrategyHiddenCity  Strategy = "hidden-city"
	StrategyAltAirports Strategy = "alt-airports"
)

// AllStrategies lists every strategy in dispatch order.
var AllStrategies = []Strategy{
	StrategyCashFare,
	StrategyHiddenCity,
	StrategyBudget,
	StrategyAwards,
	StrategyAltAirports,
}

var strategyAliases = map[string]Strategy{
	"cash":       StrategyCashFare,
	"cash-fare":  StrategyCashFare,
	"skiplagged": StrategyHiddenCity,
}

var ErrUnknownStrategy = errors.New("unknown strategy")

func ParseStrategy(s string) (Strategy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, st := range AllStrategies {
		if string(st) == name {
			return st, nil
		}
	}
	if st, ok := strategyAliases[name]; ok {
		return st, nil
	}
	return "", eris.Wrapf(ErrUnknownStrategy, "%q", s)
}

// ParseStrategies parses names, dropping duplicates while keeping the first
// occurrence's position.
func ParseStrategies(names []string) ([]Strategy, error) {
	seen := make(map[Strategy]bool, len(names))
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		st, err := ParseStrategy(n)
		if err != nil {
			return nil, err
		}
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	return out, nil
}

// DefaultStrategies picks strategies for a request that names none: cash
// fares, hidden-city and budget carriers always; awards when a program or
// profile is given; alternate airports when a savings matrix is requested.
func DefaultStrategies(req models.SearchRequest) []Strategy {
	out := []Strategy{StrategyCashFare, StrategyHiddenCity, StrategyBudget}
	if req.Program != "" || req.Profile != nil {
		out = append(out, StrategyAwards)
	}
	if req.Matrix {
		out = append(out, StrategyAltAirports)
	}
	return out
}

// Result is what a provider hands back on success. Offers use the
// canonical schema; Opportunities carries strategy-specific records.
type Result struct {
	Offers        []models.Offer
	Opportunities models.Opportunities
	Warnings      []string
}

type Provider interface {
	Name() Strategy
	Search(ctx context.Context, req models.SearchRequest) (*Result, error)
}

var ErrProviderTimeout = errors.New("timeout")

type ProviderError struct {
	Strategy Strategy
	Err      error
}

func (e *ProviderError) Error() string {
	return string(e.Strategy) + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(strategy Strategy, err error) *ProviderError {
	return &ProviderError{
		Strategy: strategy,
		Err:      err,
	}
}
