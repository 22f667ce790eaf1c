package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/models"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/internal/usage"
)

// Searcher is the search.Service surface the handlers need.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

type SearchHandler struct {
	service Searcher
}

func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{service: service}
}

// Register mounts the search routes on g.
func (h *SearchHandler) Register(g *echo.Group) {
	g.POST("/flights/search", h.Search)
	g.POST("/awards/search", h.strategy(providers.StrategyAwards))
	g.POST("/hidden-city/search", h.strategy(providers.StrategyHiddenCity))
	g.POST("/alt-airports/search", h.strategy(providers.StrategyAltAirports))
}

func (h *SearchHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Failed to parse request body: "+err.Error())
	}
	return h.run(c, req)
}

// strategy serves an endpoint dedicated to one strategy; any strategies in
// the body are ignored.
func (h *SearchHandler) strategy(s providers.Strategy) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SearchRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Failed to parse request body: "+err.Error())
		}
		req.Strategies = []string{string(s)}
		return h.run(c, req)
	}
}

func (h *SearchHandler) run(c echo.Context, req models.SearchRequest) error {
	resp, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		zap.L().Error("search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	out := *resp
	if summaryOnly, _ := strconv.ParseBool(c.QueryParam("summary_only")); summaryOnly {
		out = out.SummaryOnly()
	}

	status := http.StatusOK
	if out.AllStrategiesFailed() {
		status = http.StatusBadGateway
	}
	return c.JSON(status, out)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
		Code:    http.StatusBadRequest,
	})
}

type HealthHandler struct {
	budget     *usage.Budget
	strategies []providers.Strategy
}

func NewHealthHandler(budget *usage.Budget, strategies []providers.Strategy) *HealthHandler {
	return &HealthHandler{budget: budget, strategies: strategies}
}

// Health reports liveness, the registered strategies and, when metering is
// on, the external calls left this month.
func (h *HealthHandler) Health(c echo.Context) error {
	body := map[string]any{"status": "ok"}
	if len(h.strategies) > 0 {
		body["strategies"] = h.strategies
	}
	if h.budget != nil && h.budget.Limit() > 0 {
		remaining, err := h.budget.Remaining(c.Request().Context())
		if err != nil {
			zap.L().Warn("usage lookup failed", zap.Error(err))
		} else {
			body["external_calls_remaining"] = remaining
			body["external_call_limit"] = h.budget.Limit()
		}
	}
	return c.JSON(http.StatusOK, body)
}
