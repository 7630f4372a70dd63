// Package providers contains the adapters for the upstream flight data
// APIs. Each adapter translates one provider's wire format into
// pre-canonical records; nothing outside this package knows a provider's
// response shape.
package providers

import (
	"context"
	"errors"

	"github.com/dkramer/flightdeck/internal/models"
)

// FlightProvider is the fixed capability interface every adapter
// implements. Adapters return ErrNotSupported from capabilities their
// upstream API does not offer.
type FlightProvider interface {
	Name() string

	// SearchFlights returns priced one-way offers for a route and date.
	// Segments carry the provider's cabin vocabulary in CabinToken; the
	// normalizer resolves it.
	SearchFlights(ctx context.Context, q FlightQuery) ([]models.Offer, error)

	// GetAwardAvailability returns award rows for a route and date range,
	// cabin entries keyed by the provider's cabin tokens.
	GetAwardAvailability(ctx context.Context, q AwardQuery) ([]models.RawAward, error)

	// GetFareClassAvailability returns per-booking-class seat counts for
	// flights on a route and date.
	GetFareClassAvailability(ctx context.Context, q FareClassQuery) ([]models.FareClassAvailability, error)
}

// ErrNotSupported marks a capability an adapter's upstream API lacks.
// The fan-out layer treats it as "no data from this provider", not as a
// provider failure.
var ErrNotSupported = errors.New("capability not supported by provider")

type FlightQuery struct {
	Origin          string
	Destination     string
	DepartureDate   string
	Adults          int
	Cabin           models.Cabin // zero means any cabin
	DirectOnly      bool
	IncludeAirlines []string
	ExcludeAirlines []string
	MaxResults      int
	Currency        string
}

type AwardQuery struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Programs    []string
	Cabin       models.Cabin // zero means all cabins
	DirectOnly  bool
}

type FareClassQuery struct {
	Origin        string
	Destination   string
	Date          string
	Carrier       string
	FlightNumber  string
	DepartureTime string
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
