package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/aggregator"
	"github.com/dharmasatrya/farescout/internal/cache"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
)

type stubProvider struct {
	name  providers.Strategy
	res   *providers.Result
	err   error
	calls int
}

func (s *stubProvider) Name() providers.Strategy { return s.name }

func (s *stubProvider) Search(context.Context, models.SearchRequest) (*providers.Result, error) {
	s.calls++
	return s.res, s.err
}

func flight(airline, number string, price float64, strategy providers.Strategy) models.Offer {
	return models.Offer{
		Airline:         airline,
		FlightNumber:    number,
		Origin:          "LAX",
		Destination:     "JFK",
		DepartureDate:   "2026-03-10",
		DepartureTime:   "08:00",
		DurationMinutes: models.Minutes(330),
		Price:           price,
		Confidence:      models.ConfidenceHigh,
		SourceStrategy:  string(strategy),
	}
}

func newTestService(list ...providers.Provider) *Service {
	return NewService(
		providers.NewRegistry(list...),
		aggregator.NewDispatcher(aggregator.Config{Timeout: time.Second}),
		cache.NewMemoryCache(time.Minute),
	)
}

var baseReq = models.SearchRequest{Origin: "lax", Destination: "jfk", DepartureDate: "2026-03-10"}

func TestSearchMergesDedupsAndRanks(t *testing.T) {
	cash := &stubProvider{name: providers.StrategyCashFare, res: &providers.Result{Offers: []models.Offer{
		flight("Delta", "DL100", 320, providers.StrategyCashFare),
		flight("United", "UA200", 280, providers.StrategyCashFare),
	}}}
	budget := &stubProvider{name: providers.StrategyBudget, res: &providers.Result{Offers: []models.Offer{
		flight("Delta", "DL 100", 300, providers.StrategyBudget),
		flight("Spirit", "NK300", 150, providers.StrategyBudget),
	}}}
	hidden := &stubProvider{name: providers.StrategyHiddenCity, err: errors.New("feed down")}

	svc := newTestService(cash, budget, hidden)
	resp, err := svc.Search(context.Background(), baseReq)
	require.NoError(t, err)

	assert.Equal(t, "LAX", resp.SearchParameters.Origin)
	assert.Equal(t, []string{"google-flights", "hidden-city", "budget"}, resp.Summary.StrategiesUsed)
	assert.Equal(t, []string{"google-flights", "budget"}, resp.Summary.SuccessfulStrategies)
	require.Len(t, resp.Summary.Errors, 1)
	assert.Equal(t, models.StrategyError{Strategy: "hidden-city", Error: "feed down"}, resp.Summary.Errors[0])
	assert.NotEmpty(t, resp.Summary.SearchID)

	// DL100 reported twice; the cheaper budget copy survives
	require.Len(t, resp.AllFlights, 3)
	assert.Equal(t, 3, resp.Summary.TotalFlightsFound)
	assert.Equal(t, "Spirit", resp.AllFlights[0].Airline)
	for _, o := range resp.AllFlights {
		if o.Airline == "Delta" {
			assert.Equal(t, 300.0, o.Price)
		}
	}
	for i := 1; i < len(resp.AllFlights); i++ {
		assert.GreaterOrEqual(t, resp.AllFlights[i-1].Score, resp.AllFlights[i].Score)
	}

	require.NotNil(t, resp.PriceAnalysis)
	assert.Equal(t, 150.0, resp.PriceAnalysis.Cheapest)
	assert.False(t, resp.AllStrategiesFailed())
}

func TestSearchRejectsInvalidRequest(t *testing.T) {
	svc := newTestService()
	_, err := svc.Search(context.Background(), models.SearchRequest{Origin: "LAX"})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	req := baseReq
	req.Strategies = []string{"kayak"}
	_, err = svc.Search(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	req.Strategies = []string{"awards"}
	_, err = svc.Search(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestSearchExplicitStrategies(t *testing.T) {
	cash := &stubProvider{name: providers.StrategyCashFare, res: &providers.Result{}}
	budget := &stubProvider{name: providers.StrategyBudget, res: &providers.Result{Offers: []models.Offer{flight("Spirit", "NK1", 99, providers.StrategyBudget)}}}

	req := baseReq
	req.Strategies = []string{"budget"}
	resp, err := newTestService(cash, budget).Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, cash.calls)
	assert.Equal(t, []string{"budget"}, resp.Summary.StrategiesUsed)
	assert.Len(t, resp.BestDeals, 1)
}

func TestSearchCachesResponses(t *testing.T) {
	budget := &stubProvider{name: providers.StrategyBudget, res: &providers.Result{Offers: []models.Offer{flight("Spirit", "NK1", 99, providers.StrategyBudget)}}}
	svc := newTestService(budget)

	req := baseReq
	req.Strategies = []string{"budget"}
	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Summary.CacheHit)

	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Summary.CacheHit)
	assert.Equal(t, first.Summary.SearchID, second.Summary.SearchID)
	assert.Equal(t, 1, budget.calls)
}

func TestSearchAllFailedIsNotCached(t *testing.T) {
	budget := &stubProvider{name: providers.StrategyBudget, err: errors.New("down")}
	svc := newTestService(budget)

	req := baseReq
	req.Strategies = []string{"budget"}
	resp, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.AllStrategiesFailed())
	assert.Empty(t, resp.AllFlights)
	assert.Nil(t, resp.PriceAnalysis)

	_, err = svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, budget.calls)
}

func TestSearchCollectsOpportunitiesAndWarnings(t *testing.T) {
	awards := &stubProvider{name: providers.StrategyAwards, res: &providers.Result{
		Opportunities: models.Opportunities{Awards: []models.AwardOpportunity{{Program: "aeroplan"}}},
		Warnings:      []string{"cash feed unavailable"},
	}}

	req := baseReq
	req.Strategies = []string{"awards"}
	resp, err := newTestService(awards).Search(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Opportunities)
	assert.Len(t, resp.Opportunities.Awards, 1)
	assert.Equal(t, []models.Warning{{Source: "awards", Message: "cash feed unavailable"}}, resp.Warnings)
}

func TestSearchAppliesFilters(t *testing.T) {
	cash := &stubProvider{name: providers.StrategyCashFare, res: &providers.Result{Offers: []models.Offer{
		flight("Delta", "DL100", 320, providers.StrategyCashFare),
		flight("United", "UA200", 280, providers.StrategyCashFare),
	}}}
	maxPrice := 300.0

	req := baseReq
	req.Strategies = []string{"cash"}
	req.Filters = &models.SearchFilters{PriceMax: &maxPrice}
	resp, err := newTestService(cash).Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.AllFlights, 1)
	assert.Equal(t, "United", resp.AllFlights[0].Airline)
}
