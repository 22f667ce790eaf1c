package providers

import (
	"context"

	"github.com/dharmasatrya/farescout/internal/altairports"
	"github.com/dharmasatrya/farescout/internal/models"
)

type AltAirportsProvider struct {
	searcher *altairports.Searcher
}

func NewAltAirportsProvider(searcher *altairports.Searcher) *AltAirportsProvider {
	return &AltAirportsProvider{searcher: searcher}
}

func (p *AltAirportsProvider) Name() Strategy {
	return StrategyAltAirports
}

// Search returns offers for every alternate airport pair. The savings
// matrix is attached only when the request asks for it.
func (p *AltAirportsProvider) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	found, err := p.searcher.Search(ctx, altairports.Query{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Warnings: found.Warnings}
	for _, o := range found.Offers {
		o.SourceStrategy = string(StrategyAltAirports)
		res.Offers = append(res.Offers, o)
	}
	if req.Matrix {
		res.Opportunities.SavingsMatrix = altairports.SavingsMatrix(found.Offers)
	}
	return res, nil
}
