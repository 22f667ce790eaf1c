package awards

import "strings"

const (
	RegionOther = "Other"
	Domestic    = "Domestic"
)

var regionAirports = map[string][]string{
	"US": {"LAX", "SFO", "JFK", "ORD", "DFW", "ATL", "DEN", "SEA", "BOS",
		"MIA", "PHX", "LAS", "MCO", "BWI", "DCA", "IAD", "CLT", "PHL",
		"EWR", "IAH", "MSP", "DTW", "SAN", "TPA", "SLC", "HNL", "AUS",
		"RDU", "BNA", "PDX", "STL", "SMF", "SJC", "OAK", "FLL", "PIT"},
	"Europe": {"LHR", "CDG", "FRA", "AMS", "FCO", "MAD", "BCN", "MUC",
		"ZRH", "VIE", "CPH", "OSL", "ARN", "HEL", "LIS", "DUB",
		"BRU", "MXP", "ATH", "WAW", "PRG", "BUD"},
	"Japan": {"NRT", "HND", "ITM", "KIX", "CTS", "FUK", "NGO"},
	"Asia": {"NRT", "HND", "ICN", "PVG", "PEK", "BKK", "SIN", "HKG",
		"KUL", "MNL", "DEL", "BOM", "TPE", "SGN", "HAN"},
	"UK":              {"LHR", "LGW", "STN", "LTN", "MAN", "EDI"},
	"Middle East":     {"DXB", "DOH", "AUH", "KWI", "JED", "RUH", "AMM", "TLV"},
	"Oceania":         {"SYD", "MEL", "BNE", "AKL", "PER"},
	"South America":   {"GRU", "EZE", "BOG", "LIM", "SCL", "GIG"},
	"Central America": {"CUN", "MEX", "SJO", "PTY"},
	"Africa":          {"JNB", "CPT", "NBO", "ADD", "CAI", "CMN"},
}

// Specific regions overlap the general ones (NRT is in Japan and Asia, LHR
// in UK and Europe) and must be checked first.
var (
	specificRegions = []string{"Japan", "UK", "Middle East", "Central America"}
	generalRegions  = []string{"US", "Europe", "Asia", "Oceania", "South America", "Africa"}
)

// Region returns the most specific region containing code, or RegionOther.
func Region(code string) string {
	code = strings.ToUpper(code)
	for _, group := range [][]string{specificRegions, generalRegions} {
		for _, region := range group {
			for _, c := range regionAirports[region] {
				if c == code {
					return region
				}
			}
		}
	}
	return RegionOther
}

// RouteType buckets a route: "Domestic" for US-US, "X-X" for any other
// intra-region route, otherwise "<origin region>-<destination region>".
func RouteType(origin, destination string) string {
	o, d := Region(origin), Region(destination)
	if o == d {
		if o == "US" {
			return Domestic
		}
		return o + "-" + o
	}
	return o + "-" + d
}

// routeMatches reports whether a sweet-spot route bucket covers routeType in
// either direction. Buckets split on the first '-' only, so "US-Middle East"
// reverses to "Middle East-US".
func routeMatches(bucket, routeType string) bool {
	if bucket == routeType {
		return true
	}
	parts := strings.SplitN(bucket, "-", 2)
	if len(parts) != 2 {
		return false
	}
	return parts[1]+"-"+parts[0] == routeType
}
