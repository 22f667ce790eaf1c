package fares

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/dharmasatrya/farescout/internal/airports"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

const (
	unknownRoutePrice = 300
	perMileRate       = 0.15
	basePrice         = 150
	roundTripFactor   = 1.8
)

var popularRoutes = map[[2]string]float64{
	{"LAX", "JFK"}: 1.4,
	{"LAX", "DEN"}: 1.1,
	{"LAX", "SFO"}: 0.8,
	{"DEN", "ORD"}: 1.0,
	{"ORD", "LAX"}: 1.3,
}

var mainlineCarriers = []struct {
	name string
	code string
}{
	{"United", "UA"},
	{"American", "AA"},
	{"Delta", "DL"},
	{"JetBlue", "B6"},
	{"Southwest", "WN"},
	{"Alaska", "AS"},
}

var aircraftTypes = []string{"Boeing 737", "Airbus A320", "Boeing 777", "Airbus A330"}

var fallbackHubs = []string{"DEN", "ORD", "ATL", "DFW", "PHX"}

// Estimator models fares from great-circle distance. Its output is a pure
// function of the query and the clock, so repeated searches agree.
type Estimator struct {
	now         func() time.Time
	connections map[string][]string
}

type EstimatorOption func(*Estimator)

func WithClock(now func() time.Time) EstimatorOption {
	return func(e *Estimator) { e.now = now }
}

// WithConnections sets, per destination, the hubs through which the
// destination is usually reached.
func WithConnections(viaHubs map[string][]string) EstimatorOption {
	return func(e *Estimator) { e.connections = viaHubs }
}

func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EstimatePrice returns a one-way economy fare estimate in USD.
func (e *Estimator) EstimatePrice(origin, destination, date string) float64 {
	distance, ok := airports.Distance(origin, destination)
	if !ok {
		return unknownRoutePrice
	}

	price := distance*perMileRate + basePrice

	if d, err := time.Parse(models.DateLayout, date); err == nil {
		daysAhead := int(d.Sub(e.now()).Hours() / 24)
		switch {
		case daysAhead < 7:
			price *= 1.8
		case daysAhead < 14:
			price *= 1.5
		case daysAhead < 30:
			price *= 1.2
		case daysAhead > 90:
			price *= 0.9
		}

		switch d.Weekday() {
		case time.Friday, time.Sunday:
			price *= 1.3
		case time.Tuesday, time.Wednesday:
			price *= 0.9
		}
	}

	if m, ok := popularRoutes[[2]string{origin, destination}]; ok {
		price *= m
	} else if m, ok := popularRoutes[[2]string{destination, origin}]; ok {
		price *= m
	}

	return currency.Round2(price)
}

func (e *Estimator) DirectPrice(_ context.Context, q Query) (float64, error) {
	return e.EstimatePrice(q.Origin, q.Destination, q.DepartureDate), nil
}

// Offers returns a few nonstop fares plus one connecting itinerary through
// each hub known to serve the destination.
func (e *Estimator) Offers(ctx context.Context, q Query) ([]models.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := NewRand(q.Origin, q.Destination, q.DepartureDate, q.cabin())
	base := e.EstimatePrice(q.Origin, q.Destination, q.DepartureDate)
	flightMinutes := BlockMinutes(q.Origin, q.Destination)

	var offers []models.Offer
	for i := 0; i < 3; i++ {
		price := base * (0.85 + rng.Float64()*0.45)
		offers = append(offers, e.offer(rng, q, price, flightMinutes, nil))
	}

	for _, hub := range e.hubsFor(q.Destination) {
		if hub == q.Origin || hub == q.Destination {
			continue
		}
		// through-fares on connections commonly undercut the nonstop
		price := base * (0.6 + rng.Float64()*0.25)
		minutes := flightMinutes + 60 + rng.IntN(90)
		layover := models.Layover{Airport: hub, DurationMinutes: 45 + rng.IntN(90)}
		offers = append(offers, e.offer(rng, q, price, minutes, &layover))
	}

	return offers, nil
}

func (e *Estimator) hubsFor(destination string) []string {
	if hubs, ok := e.connections[destination]; ok {
		return hubs
	}
	if e.connections == nil {
		return fallbackHubs[:2]
	}
	return nil
}

// BlockMinutes estimates gate-to-gate time for a nonstop between two
// airports, or four hours when either airport is unknown.
func BlockMinutes(origin, destination string) int {
	distance, ok := airports.Distance(origin, destination)
	if !ok {
		return 240
	}
	// ~500 mph cruise plus taxi and climb
	return int(math.Round(distance/500*60)) + 30
}

func (e *Estimator) offer(rng *rand.Rand, q Query, price float64, minutes int, layover *models.Layover) models.Offer {
	carrier := mainlineCarriers[rng.IntN(len(mainlineCarriers))]
	depHour := 6 + rng.IntN(16)
	depMinute := []int{0, 15, 30, 45}[rng.IntN(4)]
	dep := time.Date(2000, 1, 1, depHour, depMinute, 0, 0, time.UTC)
	arr := dep.Add(time.Duration(minutes) * time.Minute)
	aircraft := aircraftTypes[rng.IntN(len(aircraftTypes))]

	o := models.Offer{
		Airline:         carrier.name,
		FlightNumber:    fmt.Sprintf("%s%d", carrier.code, 100+rng.IntN(9900)),
		Origin:          q.Origin,
		Destination:     q.Destination,
		DepartureDate:   q.DepartureDate,
		DepartureTime:   dep.Format("15:04"),
		ArrivalTime:     arr.Format("15:04"),
		DurationMinutes: models.Minutes(minutes),
		Price:           currency.Round2(price),
		Currency:        "USD",
		CabinClass:      q.cabin(),
		TripType:        models.TripOneWay,
		Confidence:      models.ConfidenceMedium,
		DataSource:      SourceEstimated,
		Aircraft:        &aircraft,
		BookingURL:      bookingURL(q),
	}
	if layover != nil {
		o.Stops = 1
		o.Layovers = []models.Layover{*layover}
	}
	if q.IsRoundTrip() {
		o.ReturnDate = q.ReturnDate
		o.TripType = models.TripRoundTrip
		o.Price = currency.Round2(o.Price * roundTripFactor)
	}
	return o
}

func bookingURL(q Query) string {
	v := url.Values{}
	v.Set("origin", q.Origin)
	v.Set("destination", q.Destination)
	v.Set("date", q.DepartureDate)
	return "https://www.google.com/travel/flights/booking?" + v.Encode()
}

// NewRand returns a generator seeded from parts, so synthetic data is stable
// for a given route and date.
func NewRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum64()
	return rand.New(rand.NewPCG(sum, sum>>7|1))
}
