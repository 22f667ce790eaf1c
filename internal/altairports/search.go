package altairports

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

const (
	RouteDirect = "direct"

	// matrix entries are recommended above this net saving and below this
	// transfer time
	recommendSavings = 50
	recommendMinutes = 120

	maxConcurrentRoutes = 4
)

type Query struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    *string
}

type Result struct {
	Offers   []models.Offer
	Warnings []string
}

type route struct {
	origin      string
	destination string
	kind        string
}

type Searcher struct {
	source fares.OfferSource
	table  *Table
}

func NewSearcher(source fares.OfferSource, table *Table) *Searcher {
	return &Searcher{source: source, table: table}
}

// Search prices the requested route and every combination of alternate
// origin and destination airports. Offers are ordered by total cost
// including ground transport.
func (s *Searcher) Search(ctx context.Context, q Query) (*Result, error) {
	routes := s.routes(q.Origin, q.Destination)
	found := make([][]models.Offer, len(routes))
	failed := make([]error, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRoutes)
	for i, r := range routes {
		g.Go(func() error {
			offers, err := s.source.Offers(gctx, fares.Query{
				Origin:        r.origin,
				Destination:   r.destination,
				DepartureDate: q.DepartureDate,
				ReturnDate:    q.ReturnDate,
			})
			if err != nil {
				// one bad route must not sink the others
				failed[i] = err
				return nil
			}
			found[i] = s.annotate(q, r, offers)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, r := range routes {
		if failed[i] != nil {
			zap.L().Warn("alternate route lookup failed",
				zap.String("route", r.origin+"-"+r.destination),
				zap.Error(failed[i]),
			)
			res.Warnings = append(res.Warnings, fmt.Sprintf("search %s-%s failed: %v", r.origin, r.destination, failed[i]))
			continue
		}
		res.Offers = append(res.Offers, found[i]...)
	}

	sort.SliceStable(res.Offers, func(i, j int) bool {
		return totalCost(res.Offers[i]) < totalCost(res.Offers[j])
	})
	return res, nil
}

func (s *Searcher) routes(origin, destination string) []route {
	originAlts := s.table.Alternates(origin)
	destAlts := s.table.Alternates(destination)

	routes := []route{{origin, destination, RouteDirect}}
	for _, o := range originAlts {
		routes = append(routes, route{o, destination, "alt_origin_" + o})
	}
	for _, d := range destAlts {
		routes = append(routes, route{origin, d, "alt_destination_" + d})
	}
	for _, o := range originAlts {
		for _, d := range destAlts {
			routes = append(routes, route{o, d, fmt.Sprintf("alt_both_%s_%s", o, d)})
		}
	}
	return routes
}

func (s *Searcher) annotate(q Query, r route, offers []models.Offer) []models.Offer {
	out := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		gt := s.table.GroundTransport(q.Origin, q.Destination, r.origin, r.destination)
		total := currency.Round2(o.Price + gt.TotalCost)

		o.RouteType = r.kind
		o.GroundTransport = &gt
		o.TotalCostWithTransport = &total
		if gt.TotalCost > 0 {
			o.Features = append(o.Features, Recommendation(gt.TotalCost, gt.TotalTimeMinutes))
		}
		out = append(out, o)
	}
	return out
}

func totalCost(o models.Offer) float64 {
	if o.TotalCostWithTransport != nil {
		return *o.TotalCostWithTransport
	}
	return o.Price
}

// SavingsMatrix compares the cheapest offer of every airport pair against
// the cheapest fare on the requested route.
func SavingsMatrix(offers []models.Offer) []models.SavingsMatrixEntry {
	baseline := 0.0
	for _, o := range offers {
		if o.RouteType == RouteDirect && o.Price > 0 && (baseline == 0 || o.Price < baseline) {
			baseline = o.Price
		}
	}

	var keys []string
	cheapest := make(map[string]models.Offer)
	for _, o := range offers {
		key := o.Origin + "-" + o.Destination
		best, ok := cheapest[key]
		if !ok {
			keys = append(keys, key)
		}
		if !ok || o.Price < best.Price {
			cheapest[key] = o
		}
	}

	matrix := make([]models.SavingsMatrixEntry, 0, len(keys))
	for _, key := range keys {
		o := cheapest[key]

		var transportCost float64
		var transportTime int
		if o.GroundTransport != nil {
			transportCost = o.GroundTransport.TotalCost
			transportTime = o.GroundTransport.TotalTimeMinutes
		}

		flightSavings := 0.0
		if baseline > 0 {
			flightSavings = currency.Round2(baseline - o.Price)
		}
		net := currency.Round2(flightSavings - transportCost)

		matrix = append(matrix, models.SavingsMatrixEntry{
			Route:                key,
			OriginAirport:        o.Origin,
			DestinationAirport:   o.Destination,
			MinPrice:             o.Price,
			TransportCost:        transportCost,
			TotalCost:            currency.Round2(totalCost(o)),
			FlightSavings:        flightSavings,
			NetSavings:           net,
			TransportTimeMinutes: transportTime,
			Recommended:          net > recommendSavings && transportTime < recommendMinutes,
		})
	}

	sort.SliceStable(matrix, func(i, j int) bool {
		return matrix[i].TotalCost < matrix[j].TotalCost
	})
	return matrix
}
