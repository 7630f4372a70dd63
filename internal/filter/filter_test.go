package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkramer/flightdeck/internal/models"
)

var base = time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

func offer(id, carrier string, amount float64, duration time.Duration, cabin models.Cabin, stops int) models.Offer {
	segments := make([]models.Segment, stops+1)
	dep := base
	for i := range segments {
		segments[i] = models.Segment{
			Carrier:       carrier,
			FlightNumber:  "100",
			Origin:        "AAA",
			Destination:   "BBB",
			DepartureTime: dep,
			ArrivalTime:   dep.Add(2 * time.Hour),
			Duration:      2 * time.Hour,
			Cabin:         cabin,
		}
		dep = dep.Add(3 * time.Hour)
	}
	return models.Offer{
		ID:       id,
		Provider: "amadeus",
		Price:    models.Price{Amount: amount, Currency: "USD"},
		Outbound: models.Itinerary{Segments: segments, Duration: duration},
	}
}

func TestApplySortsByPriceThenDurationThenDeparture(t *testing.T) {
	offers := []models.Offer{
		offer("slow", "EK", 500, 10*time.Hour, models.CabinEconomy, 0),
		offer("cheap", "EK", 300, 8*time.Hour, models.CabinEconomy, 0),
		offer("fast", "EK", 500, 6*time.Hour, models.CabinEconomy, 0),
	}

	result, err := Apply(offers, Options{})
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "cheap", result[0].ID)
	assert.Equal(t, "fast", result[1].ID)
	assert.Equal(t, "slow", result[2].ID)
}

func TestApplyIsIdempotent(t *testing.T) {
	offers := []models.Offer{
		offer("b", "EK", 500, 10*time.Hour, models.CabinEconomy, 0),
		offer("a", "QR", 300, 8*time.Hour, models.CabinEconomy, 0),
	}
	opts := Options{MaxResults: 5}

	once, err := Apply(offers, opts)
	require.NoError(t, err)
	twice, err := Apply(once, opts)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestApplyConflictingAirlineFilters(t *testing.T) {
	offers := []models.Offer{offer("a", "EK", 300, 8*time.Hour, models.CabinEconomy, 0)}

	_, err := Apply(offers, Options{
		IncludeAirlines: []string{"EK"},
		ExcludeAirlines: []string{"QR"},
	})
	assert.ErrorIs(t, err, models.ErrFilterConflict)
}

func TestApplyCabinMatchesEverySegment(t *testing.T) {
	mixed := offer("mixed", "EK", 300, 8*time.Hour, models.CabinBusiness, 1)
	// One segment drops to premium economy; the offer no longer matches.
	mixed.Outbound.Segments[1].Cabin = models.CabinPremiumEconomy
	pure := offer("pure", "EK", 400, 8*time.Hour, models.CabinBusiness, 1)

	result, err := Apply([]models.Offer{mixed, pure}, Options{Cabin: models.CabinBusiness})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "pure", result[0].ID)
}

func TestApplyDirectOnly(t *testing.T) {
	direct := offer("direct", "EK", 500, 8*time.Hour, models.CabinEconomy, 0)
	connecting := offer("connecting", "EK", 300, 11*time.Hour, models.CabinEconomy, 1)

	result, err := Apply([]models.Offer{direct, connecting}, Options{DirectOnly: true})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "direct", result[0].ID)
}

func TestApplyAirlineFilters(t *testing.T) {
	ek := offer("ek", "EK", 300, 8*time.Hour, models.CabinEconomy, 0)
	qr := offer("qr", "QR", 350, 8*time.Hour, models.CabinEconomy, 0)

	included, err := Apply([]models.Offer{ek, qr}, Options{IncludeAirlines: []string{"ek"}})
	require.NoError(t, err)
	require.Len(t, included, 1)
	assert.Equal(t, "ek", included[0].ID)

	excluded, err := Apply([]models.Offer{ek, qr}, Options{ExcludeAirlines: []string{"EK"}})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, "qr", excluded[0].ID)
}

func TestApplyMaxResultsAfterSort(t *testing.T) {
	offers := []models.Offer{
		offer("c", "EK", 500, 8*time.Hour, models.CabinEconomy, 0),
		offer("a", "EK", 300, 8*time.Hour, models.CabinEconomy, 0),
		offer("b", "EK", 400, 8*time.Hour, models.CabinEconomy, 0),
	}

	result, err := Apply(offers, Options{MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, "b", result[1].ID)
}
