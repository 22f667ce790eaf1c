package altairports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
)

type routeSource struct {
	prices map[string]float64
	fail   map[string]bool
}

func (r *routeSource) Offers(_ context.Context, q fares.Query) ([]models.Offer, error) {
	key := q.Origin + "-" + q.Destination
	if r.fail[key] {
		return nil, errors.New("feed down")
	}
	price, ok := r.prices[key]
	if !ok {
		price = 500
	}
	return []models.Offer{
		{Airline: "Delta", FlightNumber: "DL1", Origin: q.Origin, Destination: q.Destination, DepartureDate: q.DepartureDate, Price: price + 20},
		{Airline: "United", FlightNumber: "UA2", Origin: q.Origin, Destination: q.Destination, DepartureDate: q.DepartureDate, Price: price},
	}, nil
}

func (r *routeSource) DirectPrice(context.Context, fares.Query) (float64, error) {
	return 0, fares.ErrNoFares
}

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := LoadTable("")
	require.NoError(t, err)
	return table
}

func TestLeg(t *testing.T) {
	table := testTable(t)

	leg := table.Leg("LAX", "SNA")
	assert.Equal(t, 45.0, leg.Cost)
	assert.Equal(t, 60, leg.TimeMinutes)

	reverse := table.Leg("SNA", "LAX")
	assert.Equal(t, 45.0, reverse.Cost)
	assert.Equal(t, "SNA", reverse.From)

	unknown := table.Leg("BOS", "PVD")
	assert.Equal(t, float64(DefaultTransportCost), unknown.Cost)
	assert.Equal(t, DefaultTransportMinutes, unknown.TimeMinutes)
}

func TestGroundTransport(t *testing.T) {
	table := testTable(t)

	gt := table.GroundTransport("LAX", "JFK", "LAX", "JFK")
	assert.Nil(t, gt.Origin)
	assert.Nil(t, gt.Destination)
	assert.Zero(t, gt.TotalCost)

	gt = table.GroundTransport("LAX", "JFK", "BUR", "EWR")
	require.NotNil(t, gt.Origin)
	require.NotNil(t, gt.Destination)
	assert.Equal(t, "EWR", gt.Destination.From)
	assert.Equal(t, "JFK", gt.Destination.To)
	assert.Equal(t, 115.0, gt.TotalCost)
	assert.Equal(t, 135, gt.TotalTimeMinutes)
}

func TestRecommendation(t *testing.T) {
	assert.Equal(t, "Direct route - no additional costs", Recommendation(0, 0))
	assert.Equal(t, "Good alternative - low cost and time penalty", Recommendation(35, 40))
	assert.Equal(t, "Consider if flight savings > $100", Recommendation(75, 90))
	assert.Equal(t, "High transport cost/time - only worthwhile for major savings", Recommendation(110, 150))
}

func TestSearchCombinations(t *testing.T) {
	src := &routeSource{prices: map[string]float64{"LAX-JFK": 400, "LGB-JFK": 300}}
	s := NewSearcher(src, testTable(t))

	res, err := s.Search(context.Background(), Query{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	// direct + 4 origin alternates + 3 destination alternates + 12 pairs
	assert.Len(t, res.Offers, 2*20)

	first := res.Offers[0]
	assert.Equal(t, "LGB", first.Origin)
	assert.Equal(t, "alt_origin_LGB", first.RouteType)
	require.NotNil(t, first.TotalCostWithTransport)
	assert.Equal(t, 335.0, *first.TotalCostWithTransport)
	assert.Contains(t, first.Features, "Good alternative - low cost and time penalty")

	for i := 1; i < len(res.Offers); i++ {
		assert.LessOrEqual(t, *res.Offers[i-1].TotalCostWithTransport, *res.Offers[i].TotalCostWithTransport)
	}
}

func TestSearchSkipsFailedRoutes(t *testing.T) {
	src := &routeSource{fail: map[string]bool{"BUR-JFK": true}}
	s := NewSearcher(src, testTable(t))

	res, err := s.Search(context.Background(), Query{Origin: "LAX", Destination: "DEN", DepartureDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Len(t, res.Offers, 2*5)
	assert.Empty(t, res.Warnings)

	res, err = s.Search(context.Background(), Query{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Len(t, res.Offers, 2*19)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "BUR-JFK")
}

func TestSavingsMatrix(t *testing.T) {
	src := &routeSource{prices: map[string]float64{"LAX-JFK": 400, "LGB-JFK": 300, "ONT-JFK": 340}}
	s := NewSearcher(src, testTable(t))

	res, err := s.Search(context.Background(), Query{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-03-10"})
	require.NoError(t, err)

	matrix := SavingsMatrix(res.Offers)
	assert.Len(t, matrix, 20)

	byRoute := make(map[string]models.SavingsMatrixEntry)
	for _, m := range matrix {
		byRoute[m.Route] = m
	}

	direct := byRoute["LAX-JFK"]
	assert.Equal(t, 400.0, direct.MinPrice)
	assert.Zero(t, direct.FlightSavings)
	assert.False(t, direct.Recommended)

	lgb := byRoute["LGB-JFK"]
	assert.Equal(t, 300.0, lgb.MinPrice)
	assert.Equal(t, 100.0, lgb.FlightSavings)
	assert.Equal(t, 35.0, lgb.TransportCost)
	assert.Equal(t, 65.0, lgb.NetSavings)
	assert.True(t, lgb.Recommended)

	// saves 60 on the fare but the 65 transfer eats it
	ont := byRoute["ONT-JFK"]
	assert.Equal(t, -5.0, ont.NetSavings)
	assert.False(t, ont.Recommended)

	assert.Equal(t, "LGB-JFK", matrix[0].Route)
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable("/nonexistent/alternates.yaml")
	require.Error(t, err)
}
