package models

import "time"

type StrategyStatus string

const (
	StatusSuccess StrategyStatus = "success"
	StatusFailure StrategyStatus = "failure"
)

// StrategyResult is the outcome of one provider invocation: either a success
// carrying offers (and any opportunity records) or a failure carrying the
// error message. Exactly one of the two shapes is populated.
type StrategyResult struct {
	Strategy      string         `json:"strategy"`
	Status        StrategyStatus `json:"status"`
	Offers        []Offer        `json:"-"`
	Opportunities Opportunities  `json:"-"`
	OfferCount    int            `json:"offer_count"`
	Error         string         `json:"error,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	ElapsedMs     int64          `json:"elapsed_ms"`
}

func Success(strategy string, offers []Offer, opps Opportunities) StrategyResult {
	return StrategyResult{
		Strategy:      strategy,
		Status:        StatusSuccess,
		Offers:        offers,
		Opportunities: opps,
		OfferCount:    len(offers),
	}
}

func Failure(strategy, message string) StrategyResult {
	return StrategyResult{
		Strategy: strategy,
		Status:   StatusFailure,
		Error:    message,
	}
}

func (r StrategyResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type StrategyError struct {
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

type SearchParameters struct {
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartDate      string    `json:"depart_date"`
	ReturnDate      *string   `json:"return_date"`
	FlexDays        int       `json:"flex_days,omitempty"`
	Program         string    `json:"program,omitempty"`
	SearchTimestamp time.Time `json:"search_timestamp"`
}

type SearchSummary struct {
	SearchID             string          `json:"search_id"`
	TotalFlightsFound    int             `json:"total_flights_found"`
	StrategiesUsed       []string        `json:"strategies_used"`
	SuccessfulStrategies []string        `json:"successful_strategies"`
	Errors               []StrategyError `json:"errors"`
	SearchTimeMs         int64           `json:"search_time_ms"`
	CacheHit             bool            `json:"cache_hit"`
}

type PriceAnalysis struct {
	Cheapest         float64 `json:"cheapest"`
	MostExpensive    float64 `json:"most_expensive"`
	Average          float64 `json:"average"`
	SavingsVsAverage float64 `json:"savings_vs_average"`
}

type SearchResponse struct {
	SearchParameters SearchParameters `json:"search_parameters"`
	Summary          SearchSummary    `json:"summary"`
	Strategies       []StrategyResult `json:"strategies"`
	BestDeals        []Offer          `json:"best_deals"`
	AllFlights       []Offer          `json:"all_flights,omitempty"`
	PriceAnalysis    *PriceAnalysis   `json:"price_analysis,omitempty"`
	Opportunities    *Opportunities   `json:"opportunities,omitempty"`
	Warnings         []Warning        `json:"warnings"`
}

// SummaryOnly drops the full offer list, keeping parameters, summary and
// best deals.
func (r SearchResponse) SummaryOnly() SearchResponse {
	r.AllFlights = nil
	r.Strategies = nil
	return r
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AllStrategiesFailed reports a search where strategies ran but none
// succeeded.
func (r SearchResponse) AllStrategiesFailed() bool {
	return len(r.Summary.StrategiesUsed) > 0 && len(r.Summary.SuccessfulStrategies) == 0
}
