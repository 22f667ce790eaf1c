package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
)

var errAllStrategiesFailed = eris.New("every strategy failed")

type searchFlags struct {
	returnDate   string
	flex         int
	strategies   []string
	program      string
	programs     []string
	balances     map[string]int
	matrix       bool
	priceMax     float64
	maxStops     int
	airlines     []string
	maxDuration  int
	departAfter  string
	departBefore string
	pretty       bool
	summaryOnly  bool
}

func (f *searchFlags) register(cmd *cobra.Command, withStrategies bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.returnDate, "return", "", "return date (YYYY-MM-DD) for a round trip")
	fs.IntVar(&f.flex, "flex", 0, "search this many days either side of the dates")
	if withStrategies {
		fs.StringSliceVar(&f.strategies, "strategies", nil, "strategies to run (google-flights, hidden-city, budget, awards, alt-airports)")
		fs.BoolVar(&f.matrix, "matrix", false, "include the alternate-airport savings matrix")
	}
	fs.StringVar(&f.program, "program", "", "restrict award search to one loyalty program")
	fs.StringSliceVar(&f.programs, "programs", nil, "loyalty programs you hold points in")
	fs.StringToIntVar(&f.balances, "balance", nil, "point balances, e.g. chase-ur=80000")
	fs.Float64Var(&f.priceMax, "price-max", 0, "drop offers above this price")
	fs.IntVar(&f.maxStops, "max-stops", 0, "drop offers with more stops")
	fs.StringSliceVar(&f.airlines, "airlines", nil, "only keep these airlines")
	fs.IntVar(&f.maxDuration, "max-duration", 0, "drop offers longer than this many minutes")
	fs.StringVar(&f.departAfter, "depart-after", "", "earliest departure time (HH:MM)")
	fs.StringVar(&f.departBefore, "depart-before", "", "latest departure time (HH:MM)")
	fs.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&f.summaryOnly, "summary-only", false, "omit all_flights and per-strategy detail")
}

func (f *searchFlags) request(cmd *cobra.Command, args []string) models.SearchRequest {
	req := models.SearchRequest{
		Origin:        args[0],
		Destination:   args[1],
		DepartureDate: args[2],
		FlexDays:      f.flex,
		Strategies:    f.strategies,
		Program:       f.program,
		Matrix:        f.matrix,
	}
	if f.returnDate != "" {
		r := f.returnDate
		req.ReturnDate = &r
	}
	if len(f.programs) > 0 || len(f.balances) > 0 {
		req.Profile = &models.UserProfile{Programs: f.programs, Balances: f.balances}
	}

	fs := cmd.Flags()
	var filters models.SearchFilters
	set := false
	if fs.Changed("price-max") {
		filters.PriceMax = &f.priceMax
		set = true
	}
	if fs.Changed("max-stops") {
		filters.MaxStops = &f.maxStops
		set = true
	}
	if len(f.airlines) > 0 {
		filters.Airlines = f.airlines
		set = true
	}
	if fs.Changed("max-duration") {
		filters.MaxDuration = &f.maxDuration
		set = true
	}
	if f.departAfter != "" {
		filters.DepartureTimeMin = &f.departAfter
		set = true
	}
	if f.departBefore != "" {
		filters.DepartureTimeMax = &f.departBefore
		set = true
	}
	if set {
		req.Filters = &filters
	}
	return req
}

// newSearchCmd builds a search command. A non-empty strategy pins the
// command to that one strategy.
func newSearchCmd(use, short string, strategy providers.Strategy) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   use + " ORIGIN DESTINATION DATE",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := f.request(cmd, args)
			if strategy != "" {
				req.Strategies = []string{string(strategy)}
				req.Matrix = strategy == providers.StrategyAltAirports
			}
			return runSearch(cmd, req, f)
		},
	}
	f.register(cmd, strategy == "")
	return cmd
}

func runSearch(cmd *cobra.Command, req models.SearchRequest, f *searchFlags) error {
	ctx := cmd.Context()

	env, err := initSearch(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.service.Search(ctx, req)
	if err != nil {
		return err
	}

	out := *resp
	if f.summaryOnly {
		out = out.SummaryOnly()
	}
	if err := writeJSON(cmd.OutOrStdout(), out, f.pretty); err != nil {
		return err
	}

	if resp.AllStrategiesFailed() {
		failed := make([]string, 0, len(resp.Strategies))
		for _, s := range resp.Strategies {
			failed = append(failed, s.Strategy+": "+s.Error)
		}
		zap.L().Error("search produced no results", zap.String("failures", strings.Join(failed, "; ")))
		return errAllStrategiesFailed
	}
	return nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "write output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(
		newSearchCmd("search", "Run every applicable strategy and rank the results", ""),
		newSearchCmd("awards", "Find award sweet spots and their cash value", providers.StrategyAwards),
		newSearchCmd("hidden-city", "Find hidden-city fares through hubs", providers.StrategyHiddenCity),
		newSearchCmd("alt-airports", "Compare nearby airports including ground transport", providers.StrategyAltAirports),
	)
}
