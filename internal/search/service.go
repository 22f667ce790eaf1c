// Package search runs a full search: strategy selection, concurrent
// dispatch, deduplication, filtering, ranking and the response envelope.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/aggregator"
	"github.com/dharmasatrya/farescout/internal/cache"
	"github.com/dharmasatrya/farescout/internal/dedup"
	"github.com/dharmasatrya/farescout/internal/filter"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/internal/ranking"
)

const DefaultBestDeals = 10

type Service struct {
	registry   *providers.Registry
	dispatcher *aggregator.Dispatcher
	cache      cache.Cache
	now        func() time.Time
}

func NewService(registry *providers.Registry, dispatcher *aggregator.Dispatcher, c cache.Cache) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{
		registry:   registry,
		dispatcher: dispatcher,
		cache:      c,
		now:        time.Now,
	}
}

// Search validates req and runs its strategies. Only an invalid request is
// an error; strategy failures are reported inside the response.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	start := s.now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	list, err := s.selectProviders(&req)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.Strings("strategies", req.Strategies),
	)

	if cached, ok := s.cache.Get(ctx, req); ok {
		cached.Summary.CacheHit = true
		cached.Summary.SearchTimeMs = s.now().Sub(start).Milliseconds()
		log.Debug("search served from cache")
		return cached, nil
	}

	result := s.dispatcher.Dispatch(ctx, req, list)

	offers := dedup.Deduplicate(result.Offers)
	offers = filter.Apply(offers, req.Filters)
	ranked := ranking.Rank(offers)

	resp := &models.SearchResponse{
		SearchParameters: models.SearchParameters{
			Origin:          req.Origin,
			Destination:     req.Destination,
			DepartDate:      req.DepartureDate,
			ReturnDate:      req.ReturnDate,
			FlexDays:        req.FlexDays,
			Program:         req.Program,
			SearchTimestamp: start.UTC(),
		},
		Summary: models.SearchSummary{
			SearchID:             uuid.NewString(),
			TotalFlightsFound:    len(ranked),
			StrategiesUsed:       req.Strategies,
			SuccessfulStrategies: []string{},
			Errors:               []models.StrategyError{},
		},
		Strategies:    result.Strategies,
		BestDeals:     ranking.BestDeals(ranked, DefaultBestDeals),
		AllFlights:    ranked,
		PriceAnalysis: ranking.AnalyzePrices(ranked),
		Warnings:      result.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []models.Warning{}
	}
	for _, r := range result.Strategies {
		if r.Succeeded() {
			resp.Summary.SuccessfulStrategies = append(resp.Summary.SuccessfulStrategies, r.Strategy)
			continue
		}
		resp.Summary.Errors = append(resp.Summary.Errors, models.StrategyError{Strategy: r.Strategy, Error: r.Error})
	}
	if !result.Opportunities.Empty() {
		opps := result.Opportunities
		resp.Opportunities = &opps
	}
	resp.Summary.SearchTimeMs = s.now().Sub(start).Milliseconds()

	log.Info("search complete",
		zap.String("search_id", resp.Summary.SearchID),
		zap.Int("offers", len(ranked)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int64("elapsed_ms", resp.Summary.SearchTimeMs),
	)

	if !resp.AllStrategiesFailed() {
		if err := s.cache.Set(ctx, req, resp); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// selectProviders resolves the request's strategies, falling back to the
// defaults, and rewrites req.Strategies to the canonical names.
func (s *Service) selectProviders(req *models.SearchRequest) ([]providers.Provider, error) {
	var strategies []providers.Strategy
	if len(req.Strategies) == 0 {
		strategies = providers.DefaultStrategies(*req)
	} else {
		parsed, err := providers.ParseStrategies(req.Strategies)
		if err != nil {
			return nil, models.ValidationError(err.Error())
		}
		strategies = parsed
	}

	list, err := s.registry.Select(strategies)
	if err != nil {
		return nil, models.ValidationError(err.Error())
	}

	req.Strategies = make([]string, len(strategies))
	for i, st := range strategies {
		req.Strategies[i] = string(st)
	}
	return list, nil
}
