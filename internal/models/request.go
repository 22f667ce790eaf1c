package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxFlexDays bounds the flexible-date window. A round trip searches
// (2n+1)^2 date pairs.
const MaxFlexDays = 7

type SearchFilters struct {
	PriceMax         *float64 `json:"price_max,omitempty"`
	MaxStops         *int     `json:"max_stops,omitempty"`
	Airlines         []string `json:"airlines,omitempty"`
	MaxDuration      *int     `json:"max_duration,omitempty"`
	DepartureTimeMin *string  `json:"departure_time_min,omitempty"`
	DepartureTimeMax *string  `json:"departure_time_max,omitempty"`
}

type UserProfile struct {
	Programs []string       `json:"programs"`
	Balances map[string]int `json:"balances,omitempty"`
}

func (p *UserProfile) Balance(program string) int {
	if p == nil || p.Balances == nil {
		return 0
	}
	return p.Balances[program]
}

type SearchRequest struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	FlexDays      int            `json:"flex_days,omitempty"`
	Strategies    []string       `json:"strategies,omitempty"`
	Program       string         `json:"program,omitempty"`
	Profile       *UserProfile   `json:"profile,omitempty"`
	Matrix        bool           `json:"matrix,omitempty"`
	Filters       *SearchFilters `json:"filters,omitempty"`
}

func (r SearchRequest) IsRoundTrip() bool {
	return r.ReturnDate != nil && *r.ReturnDate != ""
}

func (r SearchRequest) TripType() TripType {
	if r.IsRoundTrip() {
		return TripRoundTrip
	}
	return TripOneWay
}

var airportCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate normalizes airport codes and rejects requests that cannot be
// dispatched. It is the only place an InvalidRequest error originates.
func (r *SearchRequest) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if !airportCode.MatchString(r.Origin) || !airportCode.MatchString(r.Destination) {
		return ErrInvalidAirport
	}
	if r.Origin == r.Destination {
		return ErrSameAirport
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	depart, err := time.Parse(DateLayout, r.DepartureDate)
	if err != nil {
		return ErrInvalidDate
	}
	if r.IsRoundTrip() {
		ret, err := time.Parse(DateLayout, *r.ReturnDate)
		if err != nil {
			return ErrInvalidDate
		}
		if ret.Before(depart) {
			return ErrReturnBeforeDepart
		}
	}
	if r.FlexDays < 0 || r.FlexDays > MaxFlexDays {
		return ErrInvalidFlex
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

var ErrInvalidRequest = errors.New("invalid request")

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrInvalidAirport       ValidationError = "airport codes must be 3 letters"
	ErrSameAirport          ValidationError = "origin and destination must differ"
	ErrInvalidDate          ValidationError = "dates must be formatted YYYY-MM-DD"
	ErrReturnBeforeDepart   ValidationError = "return_date must not precede departure_date"
	ErrInvalidFlex          ValidationError = "flex_days must be between 0 and 7"
)
