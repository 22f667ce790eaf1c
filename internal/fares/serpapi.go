package fares

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dharmasatrya/farescout/internal/models"
)

const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// SerpAPI travel_class values.
const (
	classEconomy  = 1
	classPremium  = 2
	classBusiness = 3
	classFirst    = 4
)

type serpResponse struct {
	BestFlights  []serpGroup `json:"best_flights"`
	OtherFlights []serpGroup `json:"other_flights"`
	Error        string      `json:"error"`
}

type serpGroup struct {
	Flights       []serpLeg     `json:"flights"`
	Layovers      []serpLayover `json:"layovers"`
	TotalDuration int           `json:"total_duration"`
	Price         float64       `json:"price"`
}

type serpLeg struct {
	DepartureAirport serpAirport `json:"departure_airport"`
	ArrivalAirport   serpAirport `json:"arrival_airport"`
	Duration         int         `json:"duration"`
	Airplane         string      `json:"airplane"`
	Airline          string      `json:"airline"`
	TravelClass      string      `json:"travel_class"`
	FlightNumber     string      `json:"flight_number"`
}

type serpAirport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Time string `json:"time"`
}

type serpLayover struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

type SerpAPIConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
}

// SerpAPI is a Google Flights client backed by serpapi.com.
type SerpAPI struct {
	key     string
	baseURL string
	client  *http.Client
}

func NewSerpAPI(cfg SerpAPIConfig) *SerpAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSerpAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &SerpAPI{
		key:     cfg.Key,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *SerpAPI) Offers(ctx context.Context, q Query) ([]models.Offer, error) {
	resp, err := s.search(ctx, q, travelClass(q.cabin()))
	if err != nil {
		return nil, err
	}
	return s.normalize(q, append(resp.BestFlights, resp.OtherFlights...)), nil
}

func (s *SerpAPI) DirectPrice(ctx context.Context, q Query) (float64, error) {
	offers, err := s.Offers(ctx, q)
	if err != nil {
		return 0, err
	}
	price, ok := cheapest(offers)
	if !ok {
		return 0, eris.Wrapf(ErrNoFares, "serpapi: %s-%s", q.Origin, q.Destination)
	}
	return price, nil
}

func (s *SerpAPI) search(ctx context.Context, q Query, class int) (*serpResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.DepartureDate)
	params.Set("currency", "USD")
	params.Set("hl", "en")
	params.Set("travel_class", strconv.Itoa(class))
	params.Set("api_key", s.key)
	if q.IsRoundTrip() {
		params.Set("return_date", *q.ReturnDate)
		params.Set("type", "1")
	} else {
		params.Set("type", "2")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: build request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: request")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpapi: HTTP %d", res.StatusCode)
	}

	var body serpResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "serpapi: decode")
	}
	if body.Error != "" {
		return nil, eris.Errorf("serpapi: %s", body.Error)
	}
	return &body, nil
}

func (s *SerpAPI) normalize(q Query, groups []serpGroup) []models.Offer {
	offers := make([]models.Offer, 0, len(groups))
	for _, g := range groups {
		if g.Price <= 0 || len(g.Flights) == 0 {
			continue
		}
		first := g.Flights[0]
		last := g.Flights[len(g.Flights)-1]

		layovers := make([]models.Layover, len(g.Layovers))
		for i, l := range g.Layovers {
			layovers[i] = models.Layover{Airport: l.ID, City: l.Name, DurationMinutes: l.Duration}
		}
		if len(layovers) == 0 && len(g.Flights) > 1 {
			for _, leg := range g.Flights[:len(g.Flights)-1] {
				layovers = append(layovers, models.Layover{Airport: leg.ArrivalAirport.ID})
			}
		}

		o := models.Offer{
			Airline:       first.Airline,
			FlightNumber:  strings.ReplaceAll(first.FlightNumber, " ", ""),
			Origin:        q.Origin,
			Destination:   q.Destination,
			DepartureDate: q.DepartureDate,
			ReturnDate:    q.ReturnDate,
			DepartureTime: clockTime(first.DepartureAirport.Time),
			ArrivalTime:   clockTime(last.ArrivalAirport.Time),
			Stops:         len(g.Flights) - 1,
			Layovers:      layovers,
			Price:         g.Price,
			Currency:      "USD",
			CabinClass:    strings.ToLower(first.TravelClass),
			TripType:      models.TripOneWay,
			Confidence:    models.ConfidenceHigh,
			DataSource:    SourceSerpAPI,
			BookingURL:    fmt.Sprintf("https://www.google.com/travel/flights?q=%s+to+%s+on+%s", q.Origin, q.Destination, q.DepartureDate),
		}
		if g.TotalDuration > 0 {
			o.DurationMinutes = models.Minutes(g.TotalDuration)
		}
		if first.Airplane != "" {
			a := first.Airplane
			o.Aircraft = &a
		}
		if q.IsRoundTrip() {
			o.TripType = models.TripRoundTrip
		}
		offers = append(offers, o)
	}
	return offers
}

func travelClass(cabin string) int {
	switch cabin {
	case "premium", "premium_economy", "premium economy":
		return classPremium
	case "business", "upper":
		return classBusiness
	case "first", "suites":
		return classFirst
	default:
		return classEconomy
	}
}

// clockTime extracts HH:MM from "2006-01-02 15:04".
func clockTime(s string) string {
	if i := strings.LastIndex(s, " "); i >= 0 {
		return s[i+1:]
	}
	return s
}
