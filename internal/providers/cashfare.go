package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/usage"
)

// CashFareProvider searches metasearch cash fares, widening the dates by
// the request's flexibility window.
type CashFareProvider struct {
	source fares.OfferSource
}

func NewCashFareProvider(source fares.OfferSource) *CashFareProvider {
	return &CashFareProvider{source: source}
}

func (p *CashFareProvider) Name() Strategy {
	return StrategyCashFare
}

type datePair struct {
	depart string
	ret    *string
	label  string
}

func (p *CashFareProvider) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	pairs, err := flexDates(req)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var lastErr error
	for _, d := range pairs {
		offers, err := p.source.Offers(ctx, fares.Query{
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureDate: d.depart,
			ReturnDate:    d.ret,
		})
		if errors.Is(err, usage.ErrBudgetExhausted) {
			res.Warnings = append(res.Warnings, err.Error())
			return res, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			zap.L().Warn("cash fare lookup failed", zap.String("date", d.depart), zap.Error(err))
			res.Warnings = append(res.Warnings, fmt.Sprintf("no fares for %s: %v", d.depart, err))
			continue
		}
		for _, o := range offers {
			o.SourceStrategy = string(StrategyCashFare)
			o.DateFlexibility = d.label
			res.Offers = append(res.Offers, o)
		}
	}

	if len(res.Offers) == 0 && lastErr != nil {
		return nil, eris.Wrap(lastErr, "cash fare search")
	}
	return res, nil
}

// flexDates expands the request into every departure (and return) date
// within FlexDays. Pairs whose return would precede departure are skipped.
func flexDates(req models.SearchRequest) ([]datePair, error) {
	if req.FlexDays == 0 {
		return []datePair{{depart: req.DepartureDate, ret: req.ReturnDate}}, nil
	}

	depart, err := time.Parse(models.DateLayout, req.DepartureDate)
	if err != nil {
		return nil, eris.Wrap(models.ErrInvalidDate, req.DepartureDate)
	}

	var pairs []datePair
	for i := -req.FlexDays; i <= req.FlexDays; i++ {
		out := depart.AddDate(0, 0, i)
		if !req.IsRoundTrip() {
			pairs = append(pairs, datePair{
				depart: out.Format(models.DateLayout),
				label:  fmt.Sprintf("%+d days from %s", i, req.DepartureDate),
			})
			continue
		}

		back, err := time.Parse(models.DateLayout, *req.ReturnDate)
		if err != nil {
			return nil, eris.Wrap(models.ErrInvalidDate, *req.ReturnDate)
		}
		for j := -req.FlexDays; j <= req.FlexDays; j++ {
			in := back.AddDate(0, 0, j)
			if in.Before(out) {
				continue
			}
			ret := in.Format(models.DateLayout)
			pairs = append(pairs, datePair{
				depart: out.Format(models.DateLayout),
				ret:    &ret,
				label:  fmt.Sprintf("%+d days departure, %+d days return", i, j),
			})
		}
	}
	return pairs, nil
}
