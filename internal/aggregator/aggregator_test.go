package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/internal/ratelimit"
)

type fakeProvider struct {
	name   providers.Strategy
	delay  time.Duration
	offers []models.Offer
	err    error
	panics bool
	// ignoreCtx makes the provider sleep through cancellation
	ignoreCtx bool
	calls     atomic.Int32
	failFirst int32
}

func (f *fakeProvider) Name() providers.Strategy { return f.name }

func (f *fakeProvider) Search(ctx context.Context, _ models.SearchRequest) (*providers.Result, error) {
	n := f.calls.Add(1)
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if n <= f.failFirst {
		return nil, errors.New("transient")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &providers.Result{Offers: f.offers, Warnings: []string{"note from " + string(f.name)}}, nil
}

func offer(airline string, price float64) models.Offer {
	return models.Offer{Airline: airline, Origin: "LAX", Destination: "JFK", DepartureDate: "2026-03-10", Price: price}
}

var req = models.SearchRequest{Origin: "LAX", Destination: "JFK", DepartureDate: "2026-03-10"}

func TestDispatchIsolatesFailures(t *testing.T) {
	d := NewDispatcher(Config{Timeout: 200 * time.Millisecond})

	list := []providers.Provider{
		&fakeProvider{name: providers.StrategyCashFare, offers: []models.Offer{offer("Delta", 300)}},
		&fakeProvider{name: providers.StrategyBudget, err: errors.New("upstream 500")},
		&fakeProvider{name: providers.StrategyAwards, panics: true},
		&fakeProvider{name: providers.StrategyHiddenCity, offers: []models.Offer{offer("United", 250)}},
	}

	res := d.Dispatch(context.Background(), req, list)
	require.Len(t, res.Strategies, 4)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)

	assert.True(t, res.Strategies[0].Succeeded())
	assert.Equal(t, "upstream 500", res.Strategies[1].Error)
	assert.Contains(t, res.Strategies[2].Error, "panic: boom")
	assert.True(t, res.Strategies[3].Succeeded())

	require.Len(t, res.Offers, 2)
	assert.Equal(t, "Delta", res.Offers[0].Airline)
	assert.Equal(t, "United", res.Offers[1].Airline)
}

func TestDispatchTimeout(t *testing.T) {
	d := NewDispatcher(Config{Timeout: 50 * time.Millisecond})

	list := []providers.Provider{
		&fakeProvider{name: providers.StrategyCashFare, delay: time.Second},
		&fakeProvider{name: providers.StrategyBudget, delay: time.Second, ignoreCtx: true},
		&fakeProvider{name: providers.StrategyAwards, offers: []models.Offer{offer("Delta", 300)}},
	}

	start := time.Now()
	res := d.Dispatch(context.Background(), req, list)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	assert.Equal(t, "timeout", res.Strategies[0].Error)
	assert.Equal(t, "timeout", res.Strategies[1].Error)
	assert.True(t, res.Strategies[2].Succeeded())
	assert.Len(t, res.Offers, 1)
}

func TestDispatchOrderIndependentOfCompletion(t *testing.T) {
	d := NewDispatcher(Config{Timeout: time.Second})

	list := []providers.Provider{
		&fakeProvider{name: providers.StrategyCashFare, delay: 60 * time.Millisecond, offers: []models.Offer{offer("Slow", 100)}},
		&fakeProvider{name: providers.StrategyBudget, offers: []models.Offer{offer("Fast", 200)}},
	}

	for i := 0; i < 3; i++ {
		res := d.Dispatch(context.Background(), req, list)
		require.Len(t, res.Offers, 2)
		assert.Equal(t, "Slow", res.Offers[0].Airline)
		assert.Equal(t, "Fast", res.Offers[1].Airline)
		assert.Equal(t, "google-flights", res.Strategies[0].Strategy)
	}
}

func TestDispatchRejectsInvalidOffers(t *testing.T) {
	d := NewDispatcher(Config{Timeout: time.Second})
	bad := offer("Delta", -5)

	res := d.Dispatch(context.Background(), req, []providers.Provider{
		&fakeProvider{name: providers.StrategyBudget, offers: []models.Offer{offer("Spirit", 90), bad}},
	})
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Strategies[0].Error, "negative price")
	assert.Empty(t, res.Offers)
}

func TestDispatchRetries(t *testing.T) {
	d := NewDispatcher(Config{
		Timeout:     time.Second,
		MaxRetries:  2,
		RetryDelays: []time.Duration{time.Millisecond},
	})
	p := &fakeProvider{name: providers.StrategyBudget, failFirst: 2, offers: []models.Offer{offer("Spirit", 90)}}

	res := d.Dispatch(context.Background(), req, []providers.Provider{p})
	assert.True(t, res.Strategies[0].Succeeded())
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestDispatchCollectsWarnings(t *testing.T) {
	d := NewDispatcher(Config{Timeout: time.Second})
	res := d.Dispatch(context.Background(), req, []providers.Provider{
		&fakeProvider{name: providers.StrategyBudget},
	})
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.Warning{Source: "budget", Message: "note from budget"}, res.Warnings[0])
}

func TestDispatchRateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerSecond: 0.01, BurstSize: 1}, nil)
	d := NewDispatcher(Config{Timeout: 50 * time.Millisecond, RateLimiter: limiter})
	p := &fakeProvider{name: providers.StrategyBudget}

	first := d.Dispatch(context.Background(), req, []providers.Provider{p})
	assert.True(t, first.Strategies[0].Succeeded())

	second := d.Dispatch(context.Background(), req, []providers.Provider{p})
	assert.Equal(t, "timeout", second.Strategies[0].Error)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestDispatchEmpty(t *testing.T) {
	res := NewDispatcher(Config{}).Dispatch(context.Background(), req, nil)
	assert.Empty(t, res.Strategies)
	assert.Zero(t, res.Succeeded)
}
