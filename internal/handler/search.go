package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkramer/flightdeck/internal/aggregator"
	"github.com/dkramer/flightdeck/internal/cache"
	"github.com/dkramer/flightdeck/internal/engine"
	"github.com/dkramer/flightdeck/internal/filter"
	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/providers"
)

type SearchHandler struct {
	aggregator *aggregator.Aggregator
	engine     *engine.Engine
	cache      cache.Cache
}

func NewSearchHandler(agg *aggregator.Aggregator, eng *engine.Engine, c cache.Cache) *SearchHandler {
	return &SearchHandler{
		aggregator: agg,
		engine:     eng,
		cache:      c,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req models.SearchRequest
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

	opts, err := filterOptions(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	roundTrip := req.ReturnDate != nil && *req.ReturnDate != ""

	// The cached pool is already normalized and, for round trips, already
	// paired; only the filter pipeline runs on it.
	if cached, found := h.cache.Get(ctx, req); found {
		offers, _, err := h.engine.SearchCash(cached, opts)
		if err != nil {
			return filterError(c, err)
		}
		return c.JSON(http.StatusOK, models.SearchResponse{
			SearchCriteria: req,
			Metadata: models.SearchMetadata{
				TotalResults: len(offers),
				SearchTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:     true,
			},
			Offers: offers,
		})
	}

	query := flightQuery(req)

	var offers []models.Offer
	var recordErrs []error
	meta := models.SearchMetadata{}

	if roundTrip {
		outbound, ret, err := h.aggregator.SearchRoundTrip(ctx, query, *req.ReturnDate)
		if err != nil {
			return searchError(c, err)
		}
		offers, recordErrs, err = h.engine.SearchRoundTrip(outbound.Offers, ret.Offers, opts)
		if err != nil {
			return filterError(c, err)
		}
		meta.ProvidersQueried = outbound.ProvidersQueried + ret.ProvidersQueried
		meta.ProvidersSucceeded = outbound.ProvidersSucceeded + ret.ProvidersSucceeded
		meta.ProvidersFailed = outbound.ProvidersFailed + ret.ProvidersFailed
		meta.FailedProviders = uniqueStrings(append(outbound.FailedProviders, ret.FailedProviders...))
	} else {
		result, err := h.aggregator.SearchFlights(ctx, query)
		if err != nil {
			return searchError(c, err)
		}
		offers, recordErrs, err = h.engine.SearchCash(result.Offers, opts)
		if err != nil {
			return filterError(c, err)
		}
		meta.ProvidersQueried = result.ProvidersQueried
		meta.ProvidersSucceeded = result.ProvidersSucceeded
		meta.ProvidersFailed = result.ProvidersFailed
		meta.FailedProviders = result.FailedProviders
	}

	_ = h.cache.Set(ctx, req, offers)

	meta.TotalResults = len(offers)
	meta.SkippedRecords = len(recordErrs)
	meta.RecordErrors = errorStrings(recordErrs)
	meta.SearchTimeMs = time.Since(startTime).Milliseconds()

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchCriteria: req,
		Metadata:       meta,
		Offers:         offers,
	})
}

func flightQuery(req models.SearchRequest) providers.FlightQuery {
	q := providers.FlightQuery{
		Origin:          req.Origin,
		Destination:     req.Destination,
		DepartureDate:   req.DepartureDate,
		Adults:          req.Adults,
		DirectOnly:      req.DirectOnly,
		IncludeAirlines: req.IncludeAirlines,
		ExcludeAirlines: req.ExcludeAirlines,
		MaxResults:      req.MaxResults,
		Currency:        req.Currency,
	}
	if cabin, err := models.ParseCabin(req.Cabin); err == nil {
		q.Cabin = cabin
	}
	return q
}

func filterOptions(req models.SearchRequest) (filter.Options, error) {
	opts := filter.Options{
		DirectOnly:      req.DirectOnly,
		IncludeAirlines: req.IncludeAirlines,
		ExcludeAirlines: req.ExcludeAirlines,
		MaxResults:      req.MaxResults,
	}
	if req.Cabin != "" {
		cabin, err := models.ParseCabin(req.Cabin)
		if err != nil {
			return filter.Options{}, err
		}
		opts.Cabin = cabin
	}
	return opts, nil
}

func filterError(c echo.Context, err error) error {
	if errors.Is(err, models.ErrFilterConflict) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	return searchError(c, err)
}

func searchError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: "Failed to search flights: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func uniqueStrings(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
