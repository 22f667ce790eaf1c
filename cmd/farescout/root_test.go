package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/farescout/internal/config"
	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
)

func testConfig() *config.Config {
	return &config.Config{
		Dispatch:   config.DispatchConfig{Timeout: 5 * time.Second},
		RateLimit:  config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		Cache:      config.CacheConfig{Enabled: true, Driver: "memory", TTL: time.Minute},
		Usage:      config.UsageConfig{Driver: "memory", MonthlyLimit: 250},
		HiddenCity: config.HiddenCityConfig{MaxBeyond: 6, MinSavings: 30},
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"search", "awards", "hidden-city", "alt-airports", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestSearchCommand_Flags(t *testing.T) {
	cmd := newSearchCmd("search", "test", "")
	for _, name := range []string{"return", "flex", "strategies", "matrix", "balance", "price-max", "pretty", "summary-only"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}

	pinned := newSearchCmd("awards", "test", providers.StrategyAwards)
	assert.Nil(t, pinned.Flags().Lookup("strategies"))
	assert.NotNil(t, pinned.Flags().Lookup("program"))
}

func TestSearchFlags_Request(t *testing.T) {
	f := &searchFlags{}
	cmd := &cobra.Command{}
	f.register(cmd, true)
	require.NoError(t, cmd.Flags().Parse([]string{
		"--return", "2026-03-17",
		"--max-stops", "0",
		"--balance", "chase-ur=80000",
		"--airlines", "Delta,United",
	}))

	req := f.request(cmd, []string{"lax", "jfk", "2026-03-10"})
	require.NotNil(t, req.ReturnDate)
	assert.Equal(t, "2026-03-17", *req.ReturnDate)
	require.NotNil(t, req.Profile)
	assert.Equal(t, 80000, req.Profile.Balance("chase-ur"))
	require.NotNil(t, req.Filters)
	require.NotNil(t, req.Filters.MaxStops)
	assert.Equal(t, 0, *req.Filters.MaxStops)
	assert.Nil(t, req.Filters.PriceMax)
	assert.Equal(t, []string{"Delta", "United"}, req.Filters.Airlines)
}

func TestSearchFlags_NoFilters(t *testing.T) {
	f := &searchFlags{}
	cmd := &cobra.Command{}
	f.register(cmd, true)
	require.NoError(t, cmd.Flags().Parse(nil))

	req := f.request(cmd, []string{"LAX", "JFK", "2026-03-10"})
	assert.Nil(t, req.Filters)
	assert.Nil(t, req.Profile)
	assert.Nil(t, req.ReturnDate)
}

func TestInitSearch_Offline(t *testing.T) {
	env, err := initSearch(context.Background(), testConfig())
	require.NoError(t, err)
	defer env.Close()

	resp, err := env.service.Search(context.Background(), models.SearchRequest{
		Origin:        "LAX",
		Destination:   "JFK",
		DepartureDate: "2026-03-10",
		Strategies:    []string{"budget", "cash"},
	})
	require.NoError(t, err)
	assert.False(t, resp.AllStrategiesFailed())
	assert.Equal(t, []string{"budget", "google-flights"}, resp.Summary.StrategiesUsed)
	assert.NotEmpty(t, resp.AllFlights)
}

func TestInitSearch_OfflineHiddenCityIsUnmetered(t *testing.T) {
	env, err := initSearch(context.Background(), testConfig())
	require.NoError(t, err)
	defer env.Close()

	resp, err := env.service.Search(context.Background(), models.SearchRequest{
		Origin:        "LAX",
		Destination:   "DEN",
		DepartureDate: "2026-03-10",
		Strategies:    []string{"hidden-city"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden-city"}, resp.Summary.SuccessfulStrategies)

	used, err := env.budget.Used(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestServer_Routes(t *testing.T) {
	env, err := initSearch(context.Background(), testConfig())
	require.NoError(t, err)
	defer env.Close()
	e := newServer(env)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, float64(250), health["external_calls_remaining"])
	assert.Equal(t, []any{"google-flights", "hidden-city", "budget", "awards", "alt-airports"}, health["strategies"])

	body := `{"origin":"LAX","destination":"JFK","departure_date":"2026-03-10","strategies":["budget"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(`{"origin":"LAX"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
