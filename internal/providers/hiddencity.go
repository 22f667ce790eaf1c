package providers

import (
	"context"

	"github.com/dharmasatrya/farescout/internal/hiddencity"
	"github.com/dharmasatrya/farescout/internal/models"
)

// HiddenCityProvider looks for cheaper tickets to beyond cities that lay
// over at the requested destination.
type HiddenCityProvider struct {
	matcher *hiddencity.Matcher
}

func NewHiddenCityProvider(matcher *hiddencity.Matcher) *HiddenCityProvider {
	return &HiddenCityProvider{matcher: matcher}
}

func (p *HiddenCityProvider) Name() Strategy {
	return StrategyHiddenCity
}

func (p *HiddenCityProvider) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	found, err := p.matcher.Search(ctx, hiddencity.Query{
		Origin:        req.Origin,
		Target:        req.Destination,
		DepartureDate: req.DepartureDate,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Opportunities: models.Opportunities{HiddenCity: found.Opportunities},
		Warnings:      found.Warnings,
	}
	if req.IsRoundTrip() && len(found.Opportunities) > 0 {
		res.Warnings = append(res.Warnings, "hidden-city fares are one-way only; return leg not searched")
	}
	for _, h := range found.Opportunities {
		res.Offers = append(res.Offers, hiddenCityOffer(h))
	}
	return res, nil
}

// hiddenCityOffer describes the trip as the traveller flies it: origin to
// the layover, where they leave the itinerary.
func hiddenCityOffer(h models.HiddenCityOpportunity) models.Offer {
	return models.Offer{
		Airline:        h.Airline,
		FlightNumber:   h.FlightNumber,
		Origin:         h.Origin,
		Destination:    h.RealDestination,
		DepartureDate:  h.DepartureDate,
		DepartureTime:  h.DepartureTime,
		Price:          h.HiddenCityPrice,
		Currency:       "USD",
		TripType:       models.TripOneWay,
		Confidence:     h.Confidence,
		SourceStrategy: string(StrategyHiddenCity),
		BookingURL:     h.BookingURL,
		DataSource:     h.DataSource,
		HiddenCity:     true,
		TicketedTo:     h.TicketedDestination,
		RiskScore:      h.RiskScore,
		Warnings:       append([]string(nil), h.RiskFactors...),
	}
}
