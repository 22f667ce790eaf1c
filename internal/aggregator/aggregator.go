// Package aggregator runs the selected strategies concurrently and collects
// one StrategyResult per strategy.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/internal/ratelimit"
)

const DefaultTimeout = 30 * time.Second

type Config struct {
	// Timeout bounds each strategy independently.
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.Limiter
}

type Dispatcher struct {
	config Config
}

// Result holds the per-strategy outcomes in dispatch order, plus the union
// of everything the successful strategies produced.
type Result struct {
	Strategies    []models.StrategyResult
	Offers        []models.Offer
	Opportunities models.Opportunities
	Warnings      []models.Warning
	Succeeded     int
	Failed        int
}

func NewDispatcher(config Config) *Dispatcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Dispatcher{config: config}
}

// Dispatch invokes every provider concurrently. A provider that fails,
// panics or runs past its timeout becomes a Failure entry; the others are
// unaffected. Results are keyed by position in list, never by completion
// order.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.SearchRequest, list []providers.Provider) *Result {
	results := make([]models.StrategyResult, len(list))

	var g errgroup.Group
	g.SetLimit(max(len(list), 1))
	for i, p := range list {
		g.Go(func() error {
			results[i] = d.run(ctx, p, req)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Strategies: results}
	for _, r := range results {
		for _, w := range r.Warnings {
			res.Warnings = append(res.Warnings, models.Warning{Source: r.Strategy, Message: w})
		}
		if !r.Succeeded() {
			res.Failed++
			continue
		}
		res.Succeeded++
		res.Offers = append(res.Offers, r.Offers...)
		res.Opportunities.Merge(r.Opportunities)
	}
	return res
}

func (d *Dispatcher) run(ctx context.Context, p providers.Provider, req models.SearchRequest) models.StrategyResult {
	start := time.Now()
	name := string(p.Name())
	log := zap.L().With(zap.String("strategy", name))

	pctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	fail := func(err error) models.StrategyResult {
		perr := providers.NewProviderError(p.Name(), err)
		log.Warn("strategy failed", zap.Error(perr))
		r := models.Failure(name, err.Error())
		r.ElapsedMs = time.Since(start).Milliseconds()
		return r
	}

	if d.config.RateLimiter != nil {
		// Wait fails only once the deadline can no longer be met
		if err := d.config.RateLimiter.Wait(pctx, name); err != nil {
			return fail(providers.ErrProviderTimeout)
		}
	}

	out, err := d.searchWithRetry(pctx, p, req)
	if err != nil {
		return fail(timeoutOr(pctx, err))
	}

	for _, o := range out.Offers {
		if err := o.Validate(); err != nil {
			return fail(err)
		}
	}

	r := models.Success(name, out.Offers, out.Opportunities)
	r.Warnings = out.Warnings
	r.ElapsedMs = time.Since(start).Milliseconds()
	log.Debug("strategy finished",
		zap.Int("offers", r.OfferCount),
		zap.Int64("elapsed_ms", r.ElapsedMs),
	)
	return r
}

func (d *Dispatcher) searchWithRetry(ctx context.Context, p providers.Provider, req models.SearchRequest) (*providers.Result, error) {
	var lastErr error

	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 && len(d.config.RetryDelays) > 0 {
			delayIdx := min(attempt-1, len(d.config.RetryDelays)-1)
			select {
			case <-time.After(d.config.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		out, err := call(ctx, p, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
		zap.L().Debug("strategy attempt failed",
			zap.String("strategy", string(p.Name())),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

type outcome struct {
	res *providers.Result
	err error
}

// call runs one Search in its own goroutine so that a provider ignoring
// ctx still cannot hold the dispatcher past the deadline. Panics are
// converted to errors.
func call(ctx context.Context, p providers.Provider, req models.SearchRequest) (*providers.Result, error) {
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := p.Search(ctx, req)
		if err == nil && res == nil {
			res = &providers.Result{}
		}
		ch <- outcome{res: res, err: err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// timeoutOr reports an expired strategy deadline as ErrProviderTimeout.
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return providers.ErrProviderTimeout
	}
	return err
}
