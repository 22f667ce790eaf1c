// Package fares holds the external fare feeds: a live SerpAPI Google
// Flights client and a deterministic estimator used when no live feed is
// configured.
package fares

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/models"
)

const (
	SourceSerpAPI   = "serpapi"
	SourceEstimated = "estimated"
)

var ErrNoFares = errors.New("no fares found")

type Query struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    *string
	CabinClass    string
}

func (q Query) IsRoundTrip() bool {
	return q.ReturnDate != nil && *q.ReturnDate != ""
}

func (q Query) cabin() string {
	if q.CabinClass == "" {
		return "economy"
	}
	return strings.ToLower(q.CabinClass)
}

type CashPrice struct {
	CabinClass string  `json:"cabin_class"`
	Price      float64 `json:"price"`
}

// OfferSource returns priced itineraries for a route.
type OfferSource interface {
	Offers(ctx context.Context, q Query) ([]models.Offer, error)
	DirectPrice(ctx context.Context, q Query) (float64, error)
}

// CashPrices queries src once per cabin and reports every priced offer
// under the cabin it was requested for. A failed cabin is skipped; the
// error is returned only when no cabin produced prices.
func CashPrices(ctx context.Context, src OfferSource, q Query, cabins ...string) ([]CashPrice, error) {
	var prices []CashPrice
	var lastErr error
	for _, cabin := range cabins {
		cq := q
		cq.CabinClass = cabin
		offers, err := src.Offers(ctx, cq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			zap.L().Warn("cash price lookup failed",
				zap.String("cabin", cabin),
				zap.Error(err),
			)
			continue
		}
		for _, o := range offers {
			if o.Price > 0 {
				prices = append(prices, CashPrice{CabinClass: cq.cabin(), Price: o.Price})
			}
		}
	}
	if len(prices) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return prices, nil
}

func cheapest(offers []models.Offer) (float64, bool) {
	found := false
	best := 0.0
	for _, o := range offers {
		if o.Price <= 0 {
			continue
		}
		if !found || o.Price < best {
			best = o.Price
			found = true
		}
	}
	return best, found
}
