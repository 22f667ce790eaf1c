package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
)

func base() models.Offer {
	return models.Offer{
		Airline:         "United",
		FlightNumber:    "UA100",
		Origin:          "LAX",
		Destination:     "JFK",
		Price:           300,
		Stops:           0,
		DurationMinutes: models.Minutes(330),
		Confidence:      models.ConfidenceLow,
	}
}

func TestScoreComponents(t *testing.T) {
	o := base()
	assert.Equal(t, -300.0-165, Score(o))

	o.Stops = 2
	assert.Equal(t, -300.0-100-165, Score(o))

	o = base()
	o.DurationMinutes = nil
	assert.Equal(t, -600.0, Score(o))

	o = base()
	o.Confidence = models.ConfidenceHigh
	assert.Equal(t, -465.0+50, Score(o))
	o.Confidence = models.ConfidenceMedium
	assert.Equal(t, -465.0+25, Score(o))
}

func TestScoreStrategyBonus(t *testing.T) {
	tests := []struct {
		strategy providers.Strategy
		vpp      float64
		bonus    float64
	}{
		{providers.StrategyCashFare, 0, 30},
		{providers.StrategyBudget, 0, 20},
		{providers.StrategyAwards, 1.6, 40},
		{providers.StrategyAwards, 1.5, 0},
		{providers.StrategyHiddenCity, 0, 0},
		{providers.StrategyAltAirports, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			o := base()
			o.SourceStrategy = string(tt.strategy)
			o.ValuePerPoint = tt.vpp
			assert.Equal(t, -465.0+tt.bonus, Score(o))
		})
	}
}

func TestScoreMonotonicInPrice(t *testing.T) {
	cheap, dear := base(), base()
	cheap.Price = 299.99
	assert.Greater(t, Score(cheap), Score(dear))
}

func TestScoreMonotonicInStops(t *testing.T) {
	direct, oneStop := base(), base()
	oneStop.Stops = 1
	assert.Greater(t, Score(direct), Score(oneStop))
}

func TestRankOrdersDescendingAndStable(t *testing.T) {
	a := base()
	a.FlightNumber = "A"
	b := base()
	b.FlightNumber = "B"
	b.Price = 150
	c := base()
	c.FlightNumber = "C"

	ranked := Rank([]models.Offer{a, b, c})
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{ranked[0].FlightNumber, ranked[1].FlightNumber, ranked[2].FlightNumber})
	assert.Equal(t, -315.0, ranked[0].Score)
	assert.Equal(t, ranked[1].Score, ranked[2].Score)
}

func TestRankSortsOnUnroundedScore(t *testing.T) {
	a := base()
	a.FlightNumber = "A"
	a.Price = 300.004
	b := base()
	b.FlightNumber = "B"
	b.Price = 300.001

	ranked := Rank([]models.Offer{a, b})
	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].FlightNumber)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []models.Offer{base()}
	Rank(in)
	assert.Zero(t, in[0].Score)
}

func TestBestDeals(t *testing.T) {
	var offers []models.Offer
	for i := 0; i < 12; i++ {
		o := base()
		o.Price = float64(100 + i)
		offers = append(offers, o)
	}
	ranked := Rank(offers)

	top := BestDeals(ranked, DefaultBestDeals)
	require.Len(t, top, 10)
	assert.Equal(t, 100.0, top[0].Price)
	assert.Len(t, BestDeals(ranked[:3], DefaultBestDeals), 3)
}

func TestAnalyzePrices(t *testing.T) {
	assert.Nil(t, AnalyzePrices(nil))
	assert.Nil(t, AnalyzePrices([]models.Offer{{Price: 0}}))

	got := AnalyzePrices([]models.Offer{{Price: 100}, {Price: 200}, {Price: 0}, {Price: 150.5}})
	require.NotNil(t, got)
	assert.Equal(t, 100.0, got.Cheapest)
	assert.Equal(t, 200.0, got.MostExpensive)
	assert.Equal(t, 150.17, got.Average)
	assert.Equal(t, 50.17, got.SavingsVsAverage)
}
