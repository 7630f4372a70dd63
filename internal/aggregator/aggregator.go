// Package aggregator fans a search out across all configured providers
// and collects their results. Provider failures are partial: one broken
// upstream reduces the result set but never fails the search. Retries
// live here — the core engine downstream never retries anything.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/providers"
	"github.com/dkramer/flightdeck/internal/ratelimit"
)

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.ProviderLimiter
}

type Aggregator struct {
	providers []providers.FlightProvider
	config    Config
}

// Result is the outcome of one fan-out: the pooled records plus
// per-provider accounting for the response metadata.
type Result struct {
	Offers             []models.Offer
	Awards             []models.RawAward
	ProvidersQueried   int
	ProvidersSucceeded int
	ProvidersFailed    int
	FailedProviders    []string
}

func New(providerList []providers.FlightProvider, config Config) *Aggregator {
	return &Aggregator{
		providers: providerList,
		config:    config,
	}
}

// SearchFlights queries every provider for one-way cash offers and pools
// the results.
func (a *Aggregator) SearchFlights(ctx context.Context, q providers.FlightQuery) (*Result, error) {
	return a.fanOut(ctx, func(ctx context.Context, p providers.FlightProvider) (payload, error) {
		offers, err := withRetry(ctx, a.config, p, func(ctx context.Context) ([]models.Offer, error) {
			return p.SearchFlights(ctx, q)
		})
		return payload{offers: offers}, err
	})
}

// SearchAwards queries every provider for award rows and pools the
// results.
func (a *Aggregator) SearchAwards(ctx context.Context, q providers.AwardQuery) (*Result, error) {
	return a.fanOut(ctx, func(ctx context.Context, p providers.FlightProvider) (payload, error) {
		awards, err := withRetry(ctx, a.config, p, func(ctx context.Context) ([]models.RawAward, error) {
			return p.GetAwardAvailability(ctx, q)
		})
		return payload{awards: awards}, err
	})
}

// SearchRoundTrip fetches the outbound and return one-way pools
// concurrently. The pools stay disjoint; pairing them into round trips
// is the engine's job.
func (a *Aggregator) SearchRoundTrip(ctx context.Context, q providers.FlightQuery, returnDate string) (outbound, ret *Result, err error) {
	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout*2)
	defer cancel()

	returnQuery := q
	returnQuery.Origin = q.Destination
	returnQuery.Destination = q.Origin
	returnQuery.DepartureDate = returnDate

	var wg sync.WaitGroup
	var outErr, retErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		outbound, outErr = a.SearchFlights(searchCtx, q)
	}()
	go func() {
		defer wg.Done()
		ret, retErr = a.SearchFlights(searchCtx, returnQuery)
	}()
	wg.Wait()

	if outErr != nil {
		return nil, nil, outErr
	}
	if retErr != nil {
		return nil, nil, retErr
	}
	return outbound, ret, nil
}

// GetFareClassAvailability asks providers in order and returns the first
// answer — fare-class counts from two GDS views would just duplicate.
func (a *Aggregator) GetFareClassAvailability(ctx context.Context, q providers.FareClassQuery) (string, []models.FareClassAvailability, error) {
	var lastErr error
	for _, p := range a.providers {
		rows, err := p.GetFareClassAvailability(ctx, q)
		if err != nil {
			if errors.Is(err, providers.ErrNotSupported) {
				continue
			}
			lastErr = err
			continue
		}
		return p.Name(), rows, nil
	}
	if lastErr != nil {
		return "", nil, lastErr
	}
	return "", nil, providers.ErrNotSupported
}

type payload struct {
	offers []models.Offer
	awards []models.RawAward
}

type fetchFunc func(ctx context.Context, p providers.FlightProvider) (payload, error)

func (a *Aggregator) fanOut(ctx context.Context, fetch fetchFunc) (*Result, error) {
	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	result := &Result{
		Offers:           make([]models.Offer, 0),
		Awards:           make([]models.RawAward, 0),
		ProvidersQueried: len(a.providers),
	}

	type providerResult struct {
		provider string
		payload  payload
		err      error
	}

	resultCh := make(chan providerResult, len(a.providers))
	var wg sync.WaitGroup

	for _, p := range a.providers {
		wg.Add(1)
		go func(provider providers.FlightProvider) {
			defer wg.Done()

			if a.config.RateLimiter != nil {
				if err := a.config.RateLimiter.Wait(searchCtx, provider.Name()); err != nil {
					resultCh <- providerResult{provider: provider.Name(), err: err}
					return
				}
			}

			pl, err := fetch(searchCtx, provider)
			resultCh <- providerResult{provider: provider.Name(), payload: pl, err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for pr := range resultCh {
		switch {
		case errors.Is(pr.err, providers.ErrNotSupported):
			// Not a failure: the provider simply has no data of this kind.
			result.ProvidersSucceeded++
		case pr.err != nil:
			slog.Warn("provider failed", "provider", pr.provider, "error", pr.err)
			result.ProvidersFailed++
			result.FailedProviders = append(result.FailedProviders, pr.provider)
		default:
			result.ProvidersSucceeded++
			result.Offers = append(result.Offers, pr.payload.offers...)
			result.Awards = append(result.Awards, pr.payload.awards...)
		}
	}

	return result, nil
}

// withRetry retries a provider call with the configured backoff delays.
// ErrNotSupported short-circuits — retrying a missing capability is noise.
func withRetry[T any](ctx context.Context, cfg Config, provider providers.FlightProvider, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(cfg.RetryDelays) {
				delayIdx = len(cfg.RetryDelays) - 1
			}
			if delayIdx >= 0 {
				select {
				case <-time.After(cfg.RetryDelays[delayIdx]):
				case <-ctx.Done():
					return zero, ctx.Err()
				}
			}
		}

		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, providers.ErrNotSupported) {
			return zero, err
		}

		lastErr = err
		slog.Warn("provider attempt failed", "provider", provider.Name(), "attempt", attempt+1, "error", err)
	}

	return zero, lastErr
}
