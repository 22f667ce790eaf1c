package fares

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/usage"
)

// Fallback queries Primary and falls through to Secondary when the primary
// errors or returns nothing. An exhausted call budget is passed back to the
// caller instead, so strategies stop rather than continue on estimates.
type Fallback struct {
	Primary   OfferSource
	Secondary OfferSource
}

func (f *Fallback) Offers(ctx context.Context, q Query) ([]models.Offer, error) {
	offers, err := f.Primary.Offers(ctx, q)
	if err == nil && len(offers) > 0 {
		return offers, nil
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, usage.ErrBudgetExhausted) {
			return nil, err
		}
		zap.L().Warn("primary fare source failed, using fallback",
			zap.String("route", q.Origin+"-"+q.Destination),
			zap.Error(err),
		)
	}
	return f.Secondary.Offers(ctx, q)
}

func (f *Fallback) DirectPrice(ctx context.Context, q Query) (float64, error) {
	price, err := f.Primary.DirectPrice(ctx, q)
	if err == nil && price > 0 {
		return price, nil
	}
	if err != nil && (ctx.Err() != nil || errors.Is(err, usage.ErrBudgetExhausted)) {
		return 0, err
	}
	return f.Secondary.DirectPrice(ctx, q)
}
