package airports

import (
	"math"
	"strings"
)

const earthRadiusMiles = 3956

type Coordinate struct {
	Lat float64
	Lon float64
}

var coordinates = map[string]Coordinate{
	// West
	"LAX": {33.9425, -118.4081}, // Los Angeles
	"SFO": {37.6213, -122.3790}, // San Francisco
	"SEA": {47.4502, -122.3088}, // Seattle-Tacoma
	"PDX": {45.5898, -122.5951}, // Portland
	"OAK": {37.7149, -122.2197}, // Oakland
	"SJC": {37.3639, -121.9289}, // San Jose
	"SMF": {38.6954, -121.5908}, // Sacramento
	"SAN": {32.7338, -117.1933}, // San Diego
	"BUR": {34.2007, -118.3587}, // Burbank
	"LGB": {33.8177, -118.1516}, // Long Beach
	"SNA": {33.6762, -117.8675}, // Santa Ana
	"ONT": {34.0560, -117.6012}, // Ontario
	"LAS": {36.0840, -115.1537}, // Las Vegas
	"PHX": {33.4342, -112.0116}, // Phoenix
	"SLC": {40.7884, -111.9678}, // Salt Lake City
	"BOI": {43.5644, -116.2228}, // Boise
	"RNO": {39.4991, -119.7639}, // Reno
	"ABQ": {35.0402, -106.6092}, // Albuquerque
	"DEN": {39.8561, -104.6737}, // Denver
	"HNL": {21.3187, -157.9225}, // Honolulu

	// Central
	"ORD": {41.9786, -87.9048}, // Chicago O'Hare
	"MDW": {41.7868, -87.7522}, // Chicago Midway
	"MKE": {42.9472, -87.8966}, // Milwaukee
	"MSP": {44.8848, -93.2223}, // Minneapolis
	"DTW": {42.2162, -83.3554}, // Detroit
	"STL": {38.7487, -90.3700}, // St. Louis
	"DFW": {32.8968, -97.0380}, // Dallas/Fort Worth
	"DAL": {32.8471, -96.8518}, // Dallas Love
	"IAH": {29.9902, -95.3368}, // Houston Intercontinental
	"HOU": {29.6454, -95.2789}, // Houston Hobby
	"AUS": {30.1945, -97.6699}, // Austin
	"SAT": {29.5337, -98.4698}, // San Antonio

	// East
	"ATL": {33.6407, -84.4277}, // Atlanta
	"CLT": {35.2144, -80.9473}, // Charlotte
	"MIA": {25.7959, -80.2870}, // Miami
	"FLL": {26.0742, -80.1506}, // Fort Lauderdale
	"PBI": {26.6832, -80.0956}, // West Palm Beach
	"MCO": {28.4312, -81.3081}, // Orlando
	"TPA": {27.9755, -82.5332}, // Tampa
	"JFK": {40.6413, -73.7781}, // New York JFK
	"LGA": {40.7769, -73.8740}, // New York LaGuardia
	"EWR": {40.6895, -74.1745}, // Newark
	"ISP": {40.7952, -73.1002}, // Islip
	"SWF": {41.5041, -74.1048}, // Stewart
	"BOS": {42.3656, -71.0096}, // Boston
	"PVD": {41.7240, -71.4283}, // Providence
	"MHT": {42.9326, -71.4357}, // Manchester
	"PHL": {39.8729, -75.2437}, // Philadelphia
	"BWI": {39.1754, -76.6683}, // Baltimore
	"DCA": {38.8512, -77.0402}, // Washington National
	"IAD": {38.9531, -77.4565}, // Washington Dulles
}

func Lookup(code string) (Coordinate, bool) {
	c, ok := coordinates[strings.ToUpper(code)]
	return c, ok
}

// Distance returns the great-circle distance in miles between two airports.
// The boolean is false when either code is missing from the table.
func Distance(a, b string) (float64, bool) {
	ca, ok := Lookup(a)
	if !ok {
		return 0, false
	}
	cb, ok := Lookup(b)
	if !ok {
		return 0, false
	}
	return Haversine(ca, cb), true
}

func Haversine(a, b Coordinate) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * math.Asin(math.Sqrt(h)) * earthRadiusMiles
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
