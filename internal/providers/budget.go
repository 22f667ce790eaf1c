package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

const budgetRoundTripFactor = 1.9

type carrier struct {
	name      string
	code      string
	aircraft  string
	priceLow  int
	priceHigh int
	feeLow    int
	feeHigh   int
	fareTypes []string
	features  []string
	warnings  []string
	airports  []string
	bookURL   func(origin, destination, date string) string
}

func (c carrier) serves(origin, destination string) bool {
	var o, d bool
	for _, a := range c.airports {
		o = o || a == origin
		d = d || a == destination
	}
	return o && d
}

func queryURL(base string, params ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(params); i += 2 {
		v.Set(params[i], params[i+1])
	}
	return base + "?" + v.Encode()
}

var budgetCarriers = []carrier{
	{
		name: "Southwest", code: "WN", aircraft: "Boeing 737",
		priceLow: 120, priceHigh: 350, feeLow: 0, feeHigh: 50,
		fareTypes: []string{"Wanna Get Away", "Anytime", "Business Select"},
		features:  []string{"2 free bags", "No change fees", "Companion Pass eligible"},
		airports:  []string{"DEN", "LAS", "PHX", "DAL", "HOU", "MDW", "BWI", "OAK", "LAX", "SFO", "ORD", "ATL", "DFW", "JFK", "LGA", "BOS", "SEA", "MIA"},
		bookURL: func(o, d, date string) string {
			return queryURL("https://www.southwest.com/flight/search-flight.html",
				"originationAirportCode", o, "destinationAirportCode", d, "departureDate", date)
		},
	},
	{
		name: "Spirit", code: "NK", aircraft: "Airbus A319/A320",
		priceLow: 89, priceHigh: 280, feeLow: 60, feeHigh: 120,
		fareTypes: []string{"Bare Fare", "$9 Fare Club", "Standard"},
		features:  []string{"Ultra-low base fare", "Extra fees for everything", "Bare Fare"},
		warnings:  []string{"Carry-on bag fees", "Seat selection fees", "No free snacks"},
		airports:  []string{"FLL", "DFW", "LAS", "ORD", "DTW", "LAX", "JFK", "LGA", "BOS", "ATL", "PHX", "DEN", "SEA", "MIA"},
		bookURL: func(o, d, date string) string {
			return queryURL("https://www.spirit.com/book/flights", "origin", o, "destination", d, "departure", date)
		},
	},
	{
		name: "Frontier", code: "F9", aircraft: "Airbus A320neo",
		priceLow: 79, priceHigh: 299, feeLow: 50, feeHigh: 100,
		fareTypes: []string{"Basic", "Standard", "The Works"},
		features:  []string{"Low base fare", "Discount Den membership", "Animal-themed planes"},
		warnings:  []string{"Bag fees apply", "Seat fees", "Limited schedule"},
		airports:  []string{"DEN", "LAS", "PHX", "ORD", "ATL", "LAX", "SFO", "JFK", "BOS", "MIA", "SEA", "DFW"},
		bookURL: func(o, d, date string) string {
			return queryURL("https://www.flyfrontier.com/travel/flight/search", "c", "USD", "o", o, "d", d, "dd", date)
		},
	},
	{
		name: "Allegiant", code: "G4", aircraft: "Airbus A320",
		priceLow: 69, priceHigh: 249, feeLow: 45, feeHigh: 90,
		fareTypes: []string{"Basic", "Total"},
		features:  []string{"Point-to-point routes", "Vacation packages", "Very low base fares"},
		warnings:  []string{"Limited destinations", "Infrequent flights", "Many extra fees"},
		airports:  []string{"LAS", "LAX", "SFB", "PHX", "FLL", "MIA", "SNA"},
		bookURL: func(o, d, date string) string {
			return queryURL("https://www.allegiantair.com/booking/flights/select-flights", "origin", o, "destination", d, "departure", date)
		},
	},
	{
		name: "JetBlue", code: "B6", aircraft: "Airbus A220/A320",
		priceLow: 149, priceHigh: 450, feeLow: 20, feeHigh: 60,
		fareTypes: []string{"Blue Basic", "Blue", "Blue Plus", "Blue Extra", "Mint"},
		features:  []string{"Free Wi-Fi", "Free snacks", "More legroom", "Mint business class"},
		airports:  []string{"JFK", "BOS", "FLL", "LAX", "LGB", "LGA", "SFO", "MIA", "DEN", "SEA"},
		bookURL: func(o, d, date string) string {
			return queryURL("https://www.jetblue.com/booking/flights", "origin", o, "destination", d, "departure", date)
		},
	},
}

// fareTypeMultiplier prices the nth fare family of a carrier relative to
// its cheapest.
var fareTypeMultiplier = []float64{1, 1.3, 1.6}

// BudgetProvider reports low-cost carriers that aggregators usually omit.
// Fares are modeled per carrier, seeded by route and date.
type BudgetProvider struct{}

func NewBudgetProvider() *BudgetProvider {
	return &BudgetProvider{}
}

func (p *BudgetProvider) Name() Strategy {
	return StrategyBudget
}

func (p *BudgetProvider) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	res := &Result{}
	for _, c := range budgetCarriers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.serves(req.Origin, req.Destination) {
			continue
		}
		res.Offers = append(res.Offers, p.carrierOffers(c, req)...)
	}
	if len(res.Offers) == 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("no budget carrier serves %s-%s", req.Origin, req.Destination))
	}

	sort.SliceStable(res.Offers, func(i, j int) bool {
		return res.Offers[i].Price < res.Offers[j].Price
	})
	return res, nil
}

func (p *BudgetProvider) carrierOffers(c carrier, req models.SearchRequest) []models.Offer {
	rng := fares.NewRand(c.code, req.Origin, req.Destination, req.DepartureDate)
	block := fares.BlockMinutes(req.Origin, req.Destination)

	n := 1 + rng.IntN(3)
	offers := make([]models.Offer, 0, n)
	for i := 0; i < n; i++ {
		base := float64(c.priceLow + rng.IntN(c.priceHigh-c.priceLow+1))
		k := rng.IntN(len(c.fareTypes))
		price := base * fareTypeMultiplier[min(k, len(fareTypeMultiplier)-1)]

		depHour := 6 + rng.IntN(17)
		depMinute := []int{0, 15, 30, 45}[rng.IntN(4)]
		minutes := block + rng.IntN(30)
		aircraft := c.aircraft

		o := models.Offer{
			Airline:         c.name,
			FlightNumber:    fmt.Sprintf("%s%d", c.code, 100+rng.IntN(9900)),
			Origin:          req.Origin,
			Destination:     req.Destination,
			DepartureDate:   req.DepartureDate,
			DepartureTime:   fmt.Sprintf("%02d:%02d", depHour, depMinute),
			ArrivalTime:     clockAfter(depHour, depMinute, minutes),
			DurationMinutes: models.Minutes(minutes),
			Price:           currency.Round2(price),
			Currency:        "USD",
			CabinClass:      "economy",
			TripType:        models.TripOneWay,
			FareType:        c.fareTypes[k],
			Aircraft:        &aircraft,
			Confidence:      models.ConfidenceMedium,
			SourceStrategy:  string(StrategyBudget),
			DataSource:      fares.SourceEstimated,
			BookingURL:      c.bookURL(req.Origin, req.Destination, req.DepartureDate),
			Features:        append([]string(nil), c.features...),
			Warnings:        append([]string(nil), c.warnings...),
		}
		if req.IsRoundTrip() {
			o.ReturnDate = req.ReturnDate
			o.TripType = models.TripRoundTrip
			o.Price = currency.Round2(o.Price * budgetRoundTripFactor)
		}

		fees := float64(c.feeLow + rng.IntN(c.feeHigh-c.feeLow+1))
		total := currency.Round2(o.Price + fees)
		o.TotalCostEstimate = &total

		compareWithMainline(&o, 1.2+rng.Float64()*0.4)
		offers = append(offers, o)
	}
	return offers
}

// compareWithMainline notes how the all-in budget cost compares with a
// mainline fare estimated at price*multiplier.
func compareWithMainline(o *models.Offer, multiplier float64) {
	mainline := currency.Round2(o.Price * multiplier)
	savings := mainline - *o.TotalCostEstimate
	if savings <= 0 {
		o.Warnings = append(o.Warnings, "May not be cheaper after fees")
		return
	}
	o.Features = append(o.Features, fmt.Sprintf("Save %s (%.0f%%) vs mainline carriers",
		currency.FormatUSD(savings), currency.Percent(savings, mainline, 0)))
}

func clockAfter(hour, minute, add int) string {
	total := (hour*60 + minute + add) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
