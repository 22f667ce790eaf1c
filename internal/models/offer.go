package models

import "fmt"

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

type Layover struct {
	Airport         string `json:"airport"`
	City            string `json:"city,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type GroundLeg struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Cost        float64 `json:"cost"`
	TimeMinutes int     `json:"time_minutes"`
	Method      string  `json:"method"`
}

type GroundTransport struct {
	Origin           *GroundLeg `json:"origin,omitempty"`
	Destination      *GroundLeg `json:"destination,omitempty"`
	TotalCost        float64    `json:"total_cost"`
	TotalTimeMinutes int        `json:"total_time_minutes"`
}

// Offer is a single priced travel option normalized from any strategy.
// Fields below the annotation marker are filled in after ingestion.
type Offer struct {
	Airline         string     `json:"airline"`
	FlightNumber    string     `json:"flight_number,omitempty"`
	Origin          string     `json:"origin"`
	Destination     string     `json:"destination"`
	DepartureDate   string     `json:"departure_date"`
	ReturnDate      *string    `json:"return_date,omitempty"`
	DepartureTime   string     `json:"departure_time,omitempty"`
	ArrivalTime     string     `json:"arrival_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Stops           int        `json:"stops"`
	Layovers        []Layover  `json:"layovers,omitempty"`
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	CabinClass      string     `json:"cabin_class,omitempty"`
	TripType        TripType   `json:"trip_type,omitempty"`
	Confidence      Confidence `json:"confidence"`
	SourceStrategy  string     `json:"source_strategy"`
	BookingURL      string     `json:"booking_url,omitempty"`
	Aircraft        *string    `json:"aircraft,omitempty"`
	FareType        string     `json:"fare_type,omitempty"`
	Features        []string   `json:"features,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
	DateFlexibility string     `json:"date_flexibility,omitempty"`
	DataSource      string     `json:"data_source,omitempty"`

	// strategy-specific extras
	Program           string           `json:"program,omitempty"`
	MilesRequired     int              `json:"miles_required,omitempty"`
	ValuePerPoint     float64          `json:"value_per_point,omitempty"`
	HiddenCity        bool             `json:"hidden_city,omitempty"`
	TicketedTo        string           `json:"ticketed_destination,omitempty"`
	TotalCostEstimate *float64         `json:"total_cost_estimate,omitempty"`
	RouteType         string           `json:"route_type,omitempty"`
	GroundTransport   *GroundTransport `json:"ground_transport,omitempty"`

	// annotations
	TotalCostWithTransport *float64  `json:"total_cost_with_transport,omitempty"`
	Score                  float64   `json:"score"`
	RiskScore              RiskLevel `json:"risk_score,omitempty"`
}

func Minutes(n int) *int {
	return &n
}

func (o Offer) HasLayoverAt(airport string) bool {
	for _, l := range o.Layovers {
		if l.Airport == airport {
			return true
		}
	}
	return false
}

// Validate reports offers a provider should never have produced.
func (o Offer) Validate() error {
	switch {
	case o.Origin == "" || o.Destination == "":
		return fmt.Errorf("offer %s %s: missing route", o.Airline, o.FlightNumber)
	case o.Price < 0:
		return fmt.Errorf("offer %s %s: negative price %.2f", o.Airline, o.FlightNumber, o.Price)
	case o.Stops < 0:
		return fmt.Errorf("offer %s %s: negative stops %d", o.Airline, o.FlightNumber, o.Stops)
	case o.DurationMinutes != nil && *o.DurationMinutes < 0:
		return fmt.Errorf("offer %s %s: negative duration", o.Airline, o.FlightNumber)
	}
	return nil
}
