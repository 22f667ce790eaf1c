package providers

import (
	"context"

	"github.com/dharmasatrya/farescout/internal/awards"
	"github.com/dharmasatrya/farescout/internal/models"
)

// AwardsProvider prices award sweet spots for the route. Each opportunity
// is also emitted as an offer priced at its cash taxes and fees.
type AwardsProvider struct {
	engine *awards.Engine
}

func NewAwardsProvider(engine *awards.Engine) *AwardsProvider {
	return &AwardsProvider{engine: engine}
}

func (p *AwardsProvider) Name() Strategy {
	return StrategyAwards
}

func (p *AwardsProvider) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	found, err := p.engine.Search(ctx, awards.Query{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Program:       req.Program,
		Profile:       req.Profile,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Opportunities: models.Opportunities{Awards: found.Opportunities},
		Warnings:      found.Warnings,
	}
	for _, a := range found.Opportunities {
		res.Offers = append(res.Offers, awardOffer(a))
	}
	return res, nil
}

func awardOffer(a models.AwardOpportunity) models.Offer {
	o := models.Offer{
		Airline:        a.Airline,
		Origin:         a.Origin,
		Destination:    a.Destination,
		DepartureDate:  a.DepartureDate,
		ReturnDate:     a.ReturnDate,
		Price:          a.TaxesFees,
		Currency:       "USD",
		CabinClass:     a.CabinClass,
		TripType:       a.TripType,
		Confidence:     a.Confidence,
		SourceStrategy: string(StrategyAwards),
		BookingURL:     a.BookingURL,
		DataSource:     a.Source,
		Program:        a.Program,
		MilesRequired:  a.MilesRequired,
		ValuePerPoint:  a.ValuePerPoint,
		RouteType:      a.Route,
	}
	if a.Recommendation != "" {
		o.Features = []string{a.Recommendation}
	}
	if a.Notes != "" {
		o.Features = append(o.Features, a.Notes)
	}
	return o
}
