package fares

import (
	"context"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/usage"
)

// Metered charges one call against budget before every lookup on Source.
// Once the month's budget is spent it returns usage.ErrBudgetExhausted
// without touching Source. Wrap only sources that make external calls.
type Metered struct {
	Source OfferSource
	Budget *usage.Budget
}

func NewMetered(source OfferSource, budget *usage.Budget) *Metered {
	return &Metered{Source: source, Budget: budget}
}

func (m *Metered) Offers(ctx context.Context, q Query) ([]models.Offer, error) {
	if err := m.Budget.Acquire(ctx); err != nil {
		return nil, err
	}
	return m.Source.Offers(ctx, q)
}

func (m *Metered) DirectPrice(ctx context.Context, q Query) (float64, error) {
	if err := m.Budget.Acquire(ctx); err != nil {
		return 0, err
	}
	return m.Source.DirectPrice(ctx, q)
}
