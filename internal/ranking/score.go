package ranking

import (
	"sort"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

const (
	StopPenalty            = 50
	MinutePenalty          = 0.5
	UnknownDurationPenalty = 300

	HighConfidenceBonus   = 50
	MediumConfidenceBonus = 25

	CashFareBonus   = 30
	BudgetBonus     = 20
	AwardValueBonus = 40

	// award offers beat the bonus threshold above this many cents per point
	AwardValueThreshold = 1.5

	DefaultBestDeals = 10
)

// Score rates an offer in dollar-equivalent units. Higher is better.
func Score(o models.Offer) float64 {
	score := -o.Price
	score -= StopPenalty * float64(o.Stops)

	if o.DurationMinutes != nil {
		score -= MinutePenalty * float64(*o.DurationMinutes)
	} else {
		score -= UnknownDurationPenalty
	}

	switch o.Confidence {
	case models.ConfidenceHigh:
		score += HighConfidenceBonus
	case models.ConfidenceMedium:
		score += MediumConfidenceBonus
	}

	switch providers.Strategy(o.SourceStrategy) {
	case providers.StrategyCashFare:
		score += CashFareBonus
	case providers.StrategyBudget:
		score += BudgetBonus
	case providers.StrategyAwards:
		if o.ValuePerPoint > AwardValueThreshold {
			score += AwardValueBonus
		}
	}

	return score
}

// Rank returns a copy of offers with Score filled in, sorted by score
// descending. Equal scores keep their input order.
func Rank(offers []models.Offer) []models.Offer {
	type scored struct {
		offer models.Offer
		raw   float64
	}
	all := make([]scored, len(offers))
	for i, o := range offers {
		all[i] = scored{offer: o, raw: Score(o)}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].raw > all[j].raw
	})

	ranked := make([]models.Offer, len(all))
	for i, s := range all {
		ranked[i] = s.offer
		ranked[i].Score = currency.Round2(s.raw)
	}
	return ranked
}

// BestDeals returns the first n ranked offers.
func BestDeals(ranked []models.Offer, n int) []models.Offer {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]models.Offer, n)
	copy(out, ranked[:n])
	return out
}

// AnalyzePrices summarises offers with a known price. It returns nil when
// no offer is priced.
func AnalyzePrices(offers []models.Offer) *models.PriceAnalysis {
	var lowest, highest, sum float64
	count := 0
	for _, o := range offers {
		if o.Price <= 0 {
			continue
		}
		if count == 0 || o.Price < lowest {
			lowest = o.Price
		}
		if o.Price > highest {
			highest = o.Price
		}
		sum += o.Price
		count++
	}
	if count == 0 {
		return nil
	}

	avg := currency.Round2(sum / float64(count))
	return &models.PriceAnalysis{
		Cheapest:         lowest,
		MostExpensive:    highest,
		Average:          avg,
		SavingsVsAverage: currency.Round2(avg - lowest),
	}
}
