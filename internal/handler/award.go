package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkramer/flightdeck/internal/aggregator"
	"github.com/dkramer/flightdeck/internal/engine"
	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/providers"
)

type AwardHandler struct {
	aggregator *aggregator.Aggregator
	engine     *engine.Engine
}

func NewAwardHandler(agg *aggregator.Aggregator, eng *engine.Engine) *AwardHandler {
	return &AwardHandler{
		aggregator: agg,
		engine:     eng,
	}
}

func (h *AwardHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req models.AwardSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	query := providers.AwardQuery{
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Programs:    req.Programs,
		DirectOnly:  req.DirectOnly,
	}
	if req.Cabin != "" {
		cabin, err := models.ParseCabin(req.Cabin)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		query.Cabin = cabin
	}

	result, err := h.aggregator.SearchAwards(ctx, query)
	if err != nil {
		return searchError(c, err)
	}

	view, recordErrs, err := h.engine.SearchAwards(ctx, result.Awards, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	return c.JSON(http.StatusOK, models.AwardSearchResponse{
		SearchCriteria: req,
		Metadata: models.SearchMetadata{
			TotalResults:       len(view.Dates),
			ProvidersQueried:   result.ProvidersQueried,
			ProvidersSucceeded: result.ProvidersSucceeded,
			ProvidersFailed:    result.ProvidersFailed,
			FailedProviders:    result.FailedProviders,
			SkippedRecords:     len(recordErrs),
			RecordErrors:       errorStrings(recordErrs),
			SearchTimeMs:       time.Since(startTime).Milliseconds(),
		},
		View: view,
	})
}

// FareClasses reports per-booking-class seat counts for flights on a
// route and date, from the first provider that carries GDS availability.
func (h *AwardHandler) FareClasses(c echo.Context) error {
	ctx := c.Request().Context()

	query := providers.FareClassQuery{
		Origin:        c.QueryParam("origin"),
		Destination:   c.QueryParam("destination"),
		Date:          c.QueryParam("date"),
		Carrier:       c.QueryParam("carrier"),
		FlightNumber:  c.QueryParam("flight_number"),
		DepartureTime: c.QueryParam("departure_time"),
	}
	if query.Origin == "" || query.Destination == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "origin and destination are required",
			Code:    http.StatusBadRequest,
		})
	}
	if query.Date == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "date is required",
			Code:    http.StatusBadRequest,
		})
	}

	provider, rows, err := h.aggregator.GetFareClassAvailability(ctx, query)
	if err != nil {
		if errors.Is(err, providers.ErrNotSupported) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_available",
				Message: "No provider offers fare class availability",
				Code:    http.StatusNotFound,
			})
		}
		return searchError(c, err)
	}

	normalized, recordErrs := engine.NormalizeFareClasses(provider, rows)

	return c.JSON(http.StatusOK, map[string]any{
		"provider":        provider,
		"flights":         normalized,
		"skipped_records": len(recordErrs),
		"record_errors":   errorStrings(recordErrs),
	})
}
