// Package engine runs the search pipelines: raw provider records in,
// canonical filtered results out. It owns the ordering of the stages
// (normalize, pair, filter for cash; normalize, aggregate, annotate for
// awards) and collects per-record errors without failing batches.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dkramer/flightdeck/internal/award"
	"github.com/dkramer/flightdeck/internal/balance"
	"github.com/dkramer/flightdeck/internal/cabinmap"
	"github.com/dkramer/flightdeck/internal/filter"
	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/normalizer"
	"github.com/dkramer/flightdeck/internal/pairing"
)

const dateLayout = "2006-01-02"

type Engine struct {
	normalizer *normalizer.Normalizer
	balances   *balance.Service
	poolLimit  int
}

// New constructs an Engine. poolLimit caps each leg pool before
// round-trip pairing; zero or less falls back to the pairing default.
func New(n *normalizer.Normalizer, balances *balance.Service, poolLimit int) *Engine {
	return &Engine{
		normalizer: n,
		balances:   balances,
		poolLimit:  poolLimit,
	}
}

// SearchCash normalizes a one-way offer pool and applies the filter
// pipeline. Per-record normalization errors come back alongside the
// result; only a filter conflict fails the call.
func (e *Engine) SearchCash(offers []models.Offer, opts filter.Options) ([]models.Offer, []error, error) {
	normalized, recordErrs := e.normalizer.Normalize(offers)

	result, err := filter.Apply(normalized, opts)
	if err != nil {
		return nil, nil, err
	}
	return result, recordErrs, nil
}

// SearchRoundTrip normalizes the outbound and return pools separately,
// pairs them into round trips, and applies the filter pipeline to the
// pairs. The pools are truncated to their cheapest legs before pairing;
// the truncation size follows the caller's max-results hint.
func (e *Engine) SearchRoundTrip(outbound, ret []models.Offer, opts filter.Options) ([]models.Offer, []error, error) {
	normalizedOut, outErrs := e.normalizer.Normalize(outbound)
	normalizedRet, retErrs := e.normalizer.Normalize(ret)
	recordErrs := append(outErrs, retErrs...)

	pairs := pairing.Pair(normalizedOut, normalizedRet, pairing.PoolLimit(opts.MaxResults, e.poolLimit))

	result, err := filter.Apply(pairs, opts)
	if err != nil {
		return nil, nil, err
	}
	return result, recordErrs, nil
}

// SearchAwards normalizes raw award rows, aggregates them into the
// per-date comparative view over the requested date range, and overlays
// affordability from the tracked balances. Rows with unmapped cabin
// tokens are dropped and reported; the view still covers every requested
// date.
func (e *Engine) SearchAwards(ctx context.Context, raws []models.RawAward, req models.AwardSearchRequest) (models.AggregatedView, []error, error) {
	rows, recordErrs := award.Normalize(raws)

	dates, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		return models.AggregatedView{}, nil, err
	}

	view := award.Aggregate(rows, req.Origin, req.Destination, dates, award.Options{
		Programs: req.Programs,
		Cheapest: req.Cheapest,
	})

	if err := e.balances.Annotate(ctx, &view); err != nil {
		return models.AggregatedView{}, nil, err
	}
	return view, recordErrs, nil
}

// NormalizeFareClasses resolves the per-class cabin tokens on fare-class
// rows. A class entry with an unmapped token is dropped and reported;
// the row keeps its remaining classes.
func NormalizeFareClasses(provider string, rows []models.FareClassAvailability) ([]models.FareClassAvailability, []error) {
	var errs []error
	out := make([]models.FareClassAvailability, 0, len(rows))

	for _, row := range rows {
		classes := make([]models.BookingClassCount, 0, len(row.Classes))
		for _, class := range row.Classes {
			if !class.Cabin.Valid() {
				cabin, err := cabinmap.Map(provider, class.CabinToken)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				class.Cabin = cabin
			}
			class.CabinToken = ""
			classes = append(classes, class)
		}
		row.Classes = classes
		out = append(out, row)
	}

	return out, errs
}

// dateRange expands an inclusive start..end span into its calendar
// dates. End before start is a caller error.
func dateRange(start, end string) ([]string, error) {
	if end == "" {
		end = start
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("engine.dateRange: parse start date %q: %w", start, err)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("engine.dateRange: parse end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("engine.dateRange: end date %s is before start date %s", end, start)
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates, nil
}
