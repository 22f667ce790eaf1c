package awards

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/pkg/currency"
)

type partner struct {
	Program string
	Name    string
	Ratio   float64
}

type currencyProgram struct {
	Name     string
	Partners []partner
}

var (
	unitedMP     = partner{"united-mileageplus", "United MileagePlus", 1}
	britishAvios = partner{"british-airways-avios", "British Airways Avios", 1}
	virgin       = partner{"virgin-atlantic", "Virgin Atlantic Flying Club", 1}
	aeroplan     = partner{"aeroplan", "Air Canada Aeroplan", 1}
	krisflyer    = partner{"singapore-krisflyer", "Singapore KrisFlyer", 1}
	rapidRewards = partner{"southwest-rapid-rewards", "Southwest Rapid Rewards", 1}
	flyingBlue   = partner{"air-france-klm", "Air France/KLM Flying Blue", 1}
	iberiaAvios  = partner{"iberia-avios", "Iberia Avios", 1}
	skywards     = partner{"emirates-skywards", "Emirates Skywards", 1}
	skymiles     = partner{"delta-skymiles", "Delta SkyMiles", 1}
	anaMileage   = partner{"ana-mileage-club", "ANA Mileage Club", 1}
	milesSmiles  = partner{"turkish-miles-smiles", "Turkish Miles&Smiles", 1}
	aadvantage   = partner{"american-aadvantage", "American AAdvantage", 1}
	mileagePlan  = partner{"alaska-mileage-plan", "Alaska Mileage Plan", 1}
)

// programs lists the currencies a traveller can hold, keyed by short code.
// Flexible currencies list their transfer partners; airline programs list
// themselves.
var programs = map[string]currencyProgram{
	"chase-ur": {"Chase Ultimate Rewards", []partner{
		unitedMP, britishAvios, virgin, aeroplan, krisflyer, rapidRewards, flyingBlue, iberiaAvios, skywards,
	}},
	"amex-mr": {"Amex Membership Rewards", []partner{
		skymiles, britishAvios, virgin, aeroplan, krisflyer, flyingBlue, skywards, anaMileage,
	}},
	"capital-one": {"Capital One Miles", []partner{
		britishAvios, virgin, flyingBlue, milesSmiles, skywards, krisflyer,
	}},
	"citi-typ": {"Citi ThankYou Points", []partner{
		virgin, krisflyer, flyingBlue, milesSmiles, skywards,
	}},
	"bilt": {"Bilt Rewards", []partner{
		aadvantage, unitedMP, mileagePlan, aeroplan, britishAvios, virgin, flyingBlue, milesSmiles, skywards,
	}},
	"united":    {"United MileagePlus", []partner{unitedMP}},
	"aa":        {"American AAdvantage", []partner{aadvantage}},
	"delta":     {"Delta SkyMiles", []partner{skymiles}},
	"alaska":    {"Alaska Mileage Plan", []partner{mileagePlan}},
	"southwest": {"Southwest Rapid Rewards", []partner{rapidRewards}},
}

// programOrder fixes iteration order over programs.
var programOrder = []string{"chase-ur", "amex-mr", "capital-one", "citi-typ", "bilt", "united", "aa", "delta", "alaska", "southwest"}

var aliases = map[string]string{
	"united":          "united-mileageplus",
	"aa":              "american-aadvantage",
	"american":        "american-aadvantage",
	"delta":           "delta-skymiles",
	"alaska":          "alaska-mileage-plan",
	"southwest":       "southwest-rapid-rewards",
	"chase-ur":        "chase-ultimate-rewards",
	"amex-mr":         "amex-membership-rewards",
	"british-airways": "british-airways-avios",
	"ba":              "british-airways-avios",
	"virgin":          "virgin-atlantic",
	"air-canada":      "aeroplan",
	"flying-blue":     "air-france-klm",
	"singapore":       "singapore-krisflyer",
	"turkish":         "turkish-miles-smiles",
	"emirates":        "emirates-skywards",
}

// Canonical maps a short program code to the booking-program name used in
// the sweet-spot table. Unknown names are returned lower-cased.
func Canonical(program string) string {
	p := strings.ToLower(strings.TrimSpace(program))
	if c, ok := aliases[p]; ok {
		return c
	}
	return p
}

func programName(code string) string {
	if p, ok := programs[code]; ok {
		return p.Name
	}
	return code
}

// TransferPaths lists every flexible currency that converts into program.
func TransferPaths(program string) []models.TransferPath {
	target := Canonical(program)
	var paths []models.TransferPath
	for _, code := range programOrder {
		src := programs[code]
		for _, p := range src.Partners {
			if p.Program == target {
				paths = append(paths, models.TransferPath{
					SourceProgram: code,
					SourceName:    src.Name,
					TargetProgram: target,
					Ratio:         p.Ratio,
				})
			}
		}
	}
	return paths
}

// BookingPaths works out, for each program the traveller holds, how they
// could book an award on program costing miles. A held program that is the
// booking program yields a single direct path; otherwise one path per
// matching transfer partner.
func BookingPaths(program string, miles int, profile *models.UserProfile) []models.BookingPath {
	if profile == nil {
		return nil
	}
	target := Canonical(program)

	var paths []models.BookingPath
	for _, held := range profile.Programs {
		code := strings.ToLower(strings.TrimSpace(held))
		balance := profile.Balance(held)
		name := programName(code)

		if Canonical(code) == target {
			affordable := balance >= miles
			action := "Book directly with " + name
			if !affordable {
				action = fmt.Sprintf("Need %s more %s miles", currency.FormatInt(miles-balance), name)
			}
			paths = append(paths, models.BookingPath{
				SourceProgram:       code,
				SourceName:          name,
				Balance:             balance,
				PointsOrMilesNeeded: miles,
				Affordable:          affordable,
				Action:              action,
			})
			continue
		}

		for _, p := range programs[code].Partners {
			if p.Program != target {
				continue
			}
			needed := int(float64(miles) / p.Ratio)
			affordable := balance >= needed
			action := fmt.Sprintf("Transfer %s %s → %s", currency.FormatInt(needed), name, p.Name)
			if !affordable {
				action = fmt.Sprintf("Need %s more %s points", currency.FormatInt(needed-balance), name)
			}
			transferTo := p.Name
			paths = append(paths, models.BookingPath{
				SourceProgram:       code,
				SourceName:          name,
				Balance:             balance,
				PointsOrMilesNeeded: needed,
				TransferTo:          &transferTo,
				TransferRatio:       fmt.Sprintf("%g:1", p.Ratio),
				Affordable:          affordable,
				Action:              action,
			})
		}
	}
	return paths
}

func anyAffordable(paths []models.BookingPath) bool {
	for _, p := range paths {
		if p.Affordable {
			return true
		}
	}
	return false
}

// BookingURL returns the award search page for program.
func BookingURL(program, origin, destination, date string) string {
	o, d, dt := url.QueryEscape(origin), url.QueryEscape(destination), url.QueryEscape(date)
	switch Canonical(program) {
	case "united-mileageplus":
		return fmt.Sprintf("https://www.united.com/en/us/fop/choose-flights?f=%s&t=%s&d=%s&tt=1&at=1&sc=7&px=1&taxng=1&idx=1", o, d, dt)
	case "american-aadvantage":
		return fmt.Sprintf("https://www.aa.com/booking/find-flights?origin=%s&destination=%s&departureDate=%s&tripType=oneWay&passengers=1&awardBooking=true", o, d, dt)
	case "delta-skymiles":
		return fmt.Sprintf("https://www.delta.com/flight-search/book-a-flight?tripType=oneWay&originCity=%s&destinationCity=%s&departureDate=%s&paxCount=1&awardTravel=true", o, d, dt)
	case "alaska-mileage-plan":
		return fmt.Sprintf("https://www.alaskaair.com/shopping/flights?origins=%s&destinations=%s&dates=%s&awardBooking=true", o, d, dt)
	case "virgin-atlantic":
		return fmt.Sprintf("https://www.virginatlantic.com/book/flights?origin=%s&destination=%s&date=%s&awardBooking=true", o, d, dt)
	case "aeroplan":
		return fmt.Sprintf("https://www.aircanada.com/aeroplan/redeem/availability/outbound?org0=%s&dest0=%s&departureDate0=%s&ADT=1&marketCode=INT", o, d, dt)
	case "british-airways-avios":
		return fmt.Sprintf("https://www.britishairways.com/travel/redeem/execclub?origin=%s&destination=%s&outboundDate=%s", o, d, dt)
	case "chase-ultimate-rewards":
		return "https://ultimaterewards.chase.com/travel"
	case "amex-membership-rewards":
		return "https://global.americanexpress.com/travel/home"
	default:
		return fmt.Sprintf("https://www.google.com/travel/flights?q=%s+to+%s", o, d)
	}
}

// Recommendation describes how good a redemption is at vpp cents per point.
func Recommendation(vpp float64, source string) string {
	label := " (estimated)"
	if source == SourceValidated || source == SourceScaled {
		label = " (real cash price)"
	}
	switch {
	case vpp >= 3.0:
		return "Outstanding value" + label + ", book with points"
	case vpp >= 2.0:
		return "Excellent value" + label + ", use points"
	case vpp >= 1.5:
		return "Good value" + label + ", worth using points"
	case vpp >= 1.0:
		return "Fair value" + label + ", compare with cash"
	default:
		return "Below average" + label + ", consider paying cash"
	}
}
