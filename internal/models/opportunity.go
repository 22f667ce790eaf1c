package models

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// TransferPath says that Ratio points of SourceProgram convert to one point
// of TargetProgram.
type TransferPath struct {
	SourceProgram string  `json:"source_program"`
	SourceName    string  `json:"source_name"`
	TargetProgram string  `json:"target_program"`
	Ratio         float64 `json:"ratio"`
}

type BookingPath struct {
	SourceProgram       string  `json:"source_program"`
	SourceName          string  `json:"source_name"`
	Balance             int     `json:"balance"`
	PointsOrMilesNeeded int     `json:"points_or_miles_needed"`
	TransferTo          *string `json:"transfer_to"`
	TransferRatio       string  `json:"transfer_ratio,omitempty"`
	Affordable          bool    `json:"affordable"`
	Action              string  `json:"action"`
}

type AwardOpportunity struct {
	Program          string         `json:"program"`
	Airline          string         `json:"airline"`
	CabinClass       string         `json:"class"`
	Origin           string         `json:"origin"`
	Destination      string         `json:"destination"`
	Route            string         `json:"route"`
	DepartureDate    string         `json:"departure_date"`
	ReturnDate       *string        `json:"return_date,omitempty"`
	TripType         TripType       `json:"trip_type"`
	MilesRequired    int            `json:"miles_required"`
	TaxesFees        float64        `json:"taxes_fees"`
	CashEquivalent   float64        `json:"cash_equivalent"`
	ValuePerPoint    float64        `json:"value_per_point"`
	Confidence       Confidence     `json:"confidence"`
	Source           string         `json:"source"`
	BookingURL       string         `json:"booking_url"`
	Notes            string         `json:"notes,omitempty"`
	Recommendation   string         `json:"recommendation"`
	TransferPartners []TransferPath `json:"transfer_partners"`
	BookingPaths     []BookingPath  `json:"booking_paths,omitempty"`
	UserCanBook      *bool          `json:"user_can_book,omitempty"`
}

type HiddenCityOpportunity struct {
	Origin              string     `json:"origin"`
	RealDestination     string     `json:"real_destination"`
	TicketedDestination string     `json:"ticketed_destination"`
	LayoverAirport      string     `json:"layover_airport"`
	DepartureDate       string     `json:"departure_date"`
	Airline             string     `json:"airline"`
	FlightNumber        string     `json:"flight_number,omitempty"`
	DepartureTime       string     `json:"departure_time,omitempty"`
	DirectPrice         float64    `json:"direct_price"`
	HiddenCityPrice     float64    `json:"hidden_city_price"`
	Savings             float64    `json:"savings"`
	SavingsPercent      float64    `json:"savings_percent"`
	RiskScore           RiskLevel  `json:"risk_score"`
	RiskFactors         []string   `json:"risk_factors"`
	BookingURL          string     `json:"booking_url,omitempty"`
	Confidence          Confidence `json:"confidence"`
	DataSource          string     `json:"data_source"`
}

type SavingsMatrixEntry struct {
	Route                string  `json:"route"`
	OriginAirport        string  `json:"origin_airport"`
	DestinationAirport   string  `json:"destination_airport"`
	MinPrice             float64 `json:"min_price"`
	TransportCost        float64 `json:"transport_cost"`
	TotalCost            float64 `json:"total_cost"`
	FlightSavings        float64 `json:"flight_savings"`
	NetSavings           float64 `json:"net_savings"`
	TransportTimeMinutes int     `json:"transport_time_minutes"`
	Recommended          bool    `json:"recommended"`
}

// Opportunities groups the arbitrage records emitted alongside ranked offers.
type Opportunities struct {
	Awards        []AwardOpportunity      `json:"awards,omitempty"`
	HiddenCity    []HiddenCityOpportunity `json:"hidden_city,omitempty"`
	SavingsMatrix []SavingsMatrixEntry    `json:"savings_matrix,omitempty"`
}

func (o *Opportunities) Merge(other Opportunities) {
	o.Awards = append(o.Awards, other.Awards...)
	o.HiddenCity = append(o.HiddenCity, other.HiddenCity...)
	o.SavingsMatrix = append(o.SavingsMatrix, other.SavingsMatrix...)
}

func (o Opportunities) Empty() bool {
	return len(o.Awards) == 0 && len(o.HiddenCity) == 0 && len(o.SavingsMatrix) == 0
}
