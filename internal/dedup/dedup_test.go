package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/models"
)

func offer(airline, number, depTime string, price float64, strategy string) models.Offer {
	return models.Offer{
		Airline:        airline,
		FlightNumber:   number,
		Origin:         "LAX",
		Destination:    "JFK",
		DepartureDate:  "2026-03-10",
		DepartureTime:  depTime,
		Price:          price,
		SourceStrategy: strategy,
	}
}

func TestDeduplicateKeepsLowerPrice(t *testing.T) {
	in := []models.Offer{
		offer("United", "UA100", "08:00", 320, "google-flights"),
		offer("United", "UA100", "08:00", 280, "alt-airports"),
	}

	out := Deduplicate(in)
	require.Len(t, out, 1)
	assert.Equal(t, 280.0, out[0].Price)
	assert.Equal(t, "alt-airports", out[0].SourceStrategy)
}

func TestDeduplicateTieKeepsFirst(t *testing.T) {
	in := []models.Offer{
		offer("Delta", "DL5", "09:30", 250, "google-flights"),
		offer("delta", "DL 5", "09:30", 250, "budget"),
	}

	out := Deduplicate(in)
	require.Len(t, out, 1)
	assert.Equal(t, "google-flights", out[0].SourceStrategy)
}

func TestDeduplicateDistinctKeys(t *testing.T) {
	in := []models.Offer{
		offer("United", "UA100", "08:00", 320, "a"),
		offer("United", "UA100", "14:00", 300, "a"),
		offer("United", "UA101", "08:00", 310, "a"),
		offer("Delta", "UA100", "08:00", 290, "a"),
	}
	assert.Len(t, Deduplicate(in), 4)
}

func TestDeduplicateKeepsPosition(t *testing.T) {
	in := []models.Offer{
		offer("United", "UA100", "08:00", 320, "a"),
		offer("JetBlue", "B6200", "10:00", 180, "a"),
		offer("United", "UA100", "08:00", 199, "b"),
	}

	out := Deduplicate(in)
	require.Len(t, out, 2)
	assert.Equal(t, "UA100", out[0].FlightNumber)
	assert.Equal(t, 199.0, out[0].Price)
	assert.Equal(t, "B6200", out[1].FlightNumber)
}

func TestDeduplicateWithoutFlightNumber(t *testing.T) {
	in := []models.Offer{
		{Airline: "ANA", Origin: "LAX", Destination: "NRT", DepartureDate: "2026-03-10", Price: 150, Program: "virgin-atlantic"},
		{Airline: "ANA", Origin: "LAX", Destination: "NRT", DepartureDate: "2026-03-10", Price: 150, Program: "aeroplan"},
	}
	assert.Len(t, Deduplicate(in), 2)
}

func TestDeduplicateWithoutFlightNumberSameSlot(t *testing.T) {
	// same airline, route, date and time; no flight number to tell them apart
	in := []models.Offer{
		{Airline: "Spirit", Origin: "LAX", Destination: "LAS", DepartureDate: "2026-03-10", DepartureTime: "06:15", Price: 89},
		{Airline: "Spirit", Origin: "LAX", Destination: "LAS", DepartureDate: "2026-03-10", DepartureTime: "06:15", Price: 79},
	}
	out := Deduplicate(in)
	require.Len(t, out, 2)
	assert.Equal(t, 89.0, out[0].Price)
	assert.Equal(t, 79.0, out[1].Price)
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []models.Offer{
		offer("United", "UA100", "08:00", 320, "a"),
		offer("United", "UA100", "08:00", 280, "b"),
		offer("Spirit", "NK77", "06:15", 89, "budget"),
		offer("Spirit", "NK77", "06:15", 95, "google-flights"),
		offer("Alaska", "AS9", "12:00", 210, "a"),
	}

	once := Deduplicate(in)
	assert.Equal(t, once, Deduplicate(once))
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
