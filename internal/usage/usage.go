// Package usage meters calls to external fare feeds against a monthly cap.
//
// A Budget is an explicitly scoped counter handed to whichever component
// issues metered calls. Counts are stored per calendar month, so the first
// access in a new month starts again from zero.
package usage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const periodLayout = "2006-01"

var ErrBudgetExhausted = errors.New("monthly external call budget exhausted")

// Store persists per-period call counts.
type Store interface {
	Count(ctx context.Context, period string) (int, error)
	// IncrementIfBelow adds one call to period unless the count already
	// reached limit. It returns the resulting count and whether the
	// increment happened.
	IncrementIfBelow(ctx context.Context, period string, limit int) (int, bool, error)
	// Prune drops every period other than keep.
	Prune(ctx context.Context, keep string) error
	Close() error
}

type Budget struct {
	store Store
	limit int
	now   func() time.Time

	mu         sync.Mutex
	lastPeriod string
}

// NewBudget returns a budget allowing limit calls per calendar month. A
// limit of zero or less disables metering.
func NewBudget(store Store, limit int) *Budget {
	return &Budget{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// SetClock replaces the time source, used to decide the current month.
func (b *Budget) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

func (b *Budget) Limit() int {
	return b.limit
}

func Period(t time.Time) string {
	return t.UTC().Format(periodLayout)
}

// Acquire reserves one external call. It returns ErrBudgetExhausted once the
// monthly cap is reached; the caller must not issue the call in that case.
func (b *Budget) Acquire(ctx context.Context) error {
	if b == nil || b.limit <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	period := Period(b.now())
	if err := b.rollover(ctx, period); err != nil {
		return err
	}

	count, ok, err := b.store.IncrementIfBelow(ctx, period, b.limit)
	if err != nil {
		return eris.Wrap(err, "usage: increment")
	}
	if !ok {
		zap.L().Warn("external call budget exhausted",
			zap.String("period", period),
			zap.Int("limit", b.limit),
		)
		return ErrBudgetExhausted
	}

	zap.L().Debug("external call metered",
		zap.String("period", period),
		zap.Int("count", count),
		zap.Int("limit", b.limit),
	)
	return nil
}

// Used returns the number of calls metered in the current month.
func (b *Budget) Used(ctx context.Context) (int, error) {
	if b == nil {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	count, err := b.store.Count(ctx, Period(b.now()))
	if err != nil {
		return 0, eris.Wrap(err, "usage: count")
	}
	return count, nil
}

// Remaining returns how many calls are left this month, or -1 when metering
// is disabled.
func (b *Budget) Remaining(ctx context.Context) (int, error) {
	if b == nil || b.limit <= 0 {
		return -1, nil
	}
	used, err := b.Used(ctx)
	if err != nil {
		return 0, err
	}
	if used >= b.limit {
		return 0, nil
	}
	return b.limit - used, nil
}

// rollover prunes stale periods the first time a new month is seen.
// Caller holds b.mu.
func (b *Budget) rollover(ctx context.Context, period string) error {
	if period == b.lastPeriod {
		return nil
	}
	if err := b.store.Prune(ctx, period); err != nil {
		return eris.Wrap(err, "usage: prune")
	}
	if b.lastPeriod != "" {
		zap.L().Info("external call budget reset for new month", zap.String("period", period))
	}
	b.lastPeriod = period
	return nil
}
