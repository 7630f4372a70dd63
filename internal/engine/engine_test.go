package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkramer/flightdeck/internal/balance"
	"github.com/dkramer/flightdeck/internal/filter"
	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/normalizer"
	"github.com/dkramer/flightdeck/internal/repo"
)

var base = time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*Engine, *balance.Service) {
	t.Helper()
	svc := balance.NewService(repo.NewMemoryBalanceRepo(), 0)
	return New(normalizer.New("USD"), svc, 25), svc
}

func oneWay(id string, amount float64, dep time.Time, origin, destination, flightNumber string) models.Offer {
	return models.Offer{
		ID:       id,
		Provider: "duffel",
		Price:    models.Price{Amount: amount, Currency: "USD"},
		Outbound: models.Itinerary{
			Segments: []models.Segment{{
				Carrier:       "EK",
				FlightNumber:  flightNumber,
				Origin:        origin,
				Destination:   destination,
				DepartureTime: dep,
				ArrivalTime:   dep.Add(8 * time.Hour),
				Cabin:         models.CabinEconomy,
			}},
		},
	}
}

func TestSearchCash(t *testing.T) {
	eng, _ := newEngine(t)

	bad := oneWay("bad", -5, base, "JNB", "DXB", "766")
	pool := []models.Offer{
		oneWay("pricier", 1100, base, "JNB", "DXB", "768"),
		oneWay("cheap", 900, base, "JNB", "DXB", "766"),
		bad,
	}

	offers, recordErrs, err := eng.SearchCash(pool, filter.Options{})
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "cheap", offers[0].ID)
	assert.Len(t, recordErrs, 1)
}

func TestSearchCashFilterConflict(t *testing.T) {
	eng, _ := newEngine(t)

	_, _, err := eng.SearchCash(nil, filter.Options{
		IncludeAirlines: []string{"EK"},
		ExcludeAirlines: []string{"QR"},
	})
	assert.ErrorIs(t, err, models.ErrFilterConflict)
}

func TestSearchRoundTrip(t *testing.T) {
	eng, _ := newEngine(t)

	outbound := []models.Offer{
		oneWay("o1", 900, base, "JNB", "DXB", "766"),
		oneWay("o2", 1100, base.Add(2*time.Hour), "JNB", "DXB", "768"),
	}
	ret := []models.Offer{
		oneWay("r1", 916, base.AddDate(0, 0, 7), "DXB", "JNB", "765"),
		oneWay("r2", 1300, base.AddDate(0, 0, 7), "DXB", "JNB", "767"),
	}

	offers, recordErrs, err := eng.SearchRoundTrip(outbound, ret, filter.Options{MaxResults: 2})
	require.NoError(t, err)
	assert.Empty(t, recordErrs)
	require.Len(t, offers, 2)
	assert.Equal(t, 1816.0, offers[0].Price.Amount)
	assert.Equal(t, 2016.0, offers[1].Price.Amount)
	require.NotNil(t, offers[0].Return)
}

func TestSearchAwards(t *testing.T) {
	eng, svc := newEngine(t)
	ctx := context.Background()

	_, err := svc.UpdateBalance(ctx, "qantas", 85000, nil, nil)
	require.NoError(t, err)

	raws := []models.RawAward{
		{
			ID: "a1", Provider: "seatsaero", Program: "emirates",
			Origin: "JNB", Destination: "DXB", Date: "2026-09-14",
			Cabins: map[string]models.RawCabinAward{
				"J": {Available: true, MileageCost: 91500},
			},
		},
		{
			ID: "a2", Provider: "seatsaero", Program: "qantas",
			Origin: "JNB", Destination: "DXB", Date: "2026-09-14",
			Cabins: map[string]models.RawCabinAward{
				"J": {Available: true, MileageCost: 82100},
			},
		},
	}

	view, recordErrs, err := eng.SearchAwards(ctx, raws, models.AwardSearchRequest{
		Origin:      "JNB",
		Destination: "DXB",
		StartDate:   "2026-09-14",
		EndDate:     "2026-09-15",
	})
	require.NoError(t, err)
	assert.Empty(t, recordErrs)
	require.Len(t, view.Dates, 2)

	cheapest := view.Dates[0].CheapestPerCabin[models.CabinBusiness]
	assert.Equal(t, "qantas", cheapest.Program)
	assert.Equal(t, models.AffordabilityAffordable, cheapest.Affordability)
}

func TestSearchAwardsBadDateRange(t *testing.T) {
	eng, _ := newEngine(t)

	_, _, err := eng.SearchAwards(context.Background(), nil, models.AwardSearchRequest{
		Origin:      "JNB",
		Destination: "DXB",
		StartDate:   "2026-09-15",
		EndDate:     "2026-09-14",
	})
	assert.Error(t, err)
}

func TestNormalizeFareClasses(t *testing.T) {
	rows := []models.FareClassAvailability{{
		Carrier:      "EK",
		FlightNumber: "766",
		Origin:       "JNB",
		Destination:  "DXB",
		Date:         "2026-09-14",
		Classes: []models.BookingClassCount{
			{CabinToken: "ECONOMY", BookingClass: "Y", Seats: 9},
			{CabinToken: "BUSINESS", BookingClass: "J", Seats: 4},
			{CabinToken: "SUITE", BookingClass: "R", Seats: 1},
		},
	}}

	normalized, errs := NormalizeFareClasses("amadeus", rows)
	require.Len(t, normalized, 1)
	// The unmapped class is dropped; the row keeps the rest.
	require.Len(t, normalized[0].Classes, 2)
	assert.Equal(t, models.CabinEconomy, normalized[0].Classes[0].Cabin)
	assert.Equal(t, models.CabinBusiness, normalized[0].Classes[1].Cabin)
	require.Len(t, errs, 1)
}

func TestDateRange(t *testing.T) {
	dates, err := dateRange("2026-09-14", "2026-09-16")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-14", "2026-09-15", "2026-09-16"}, dates)

	dates, err = dateRange("2026-09-14", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-14"}, dates)

	_, err = dateRange("not-a-date", "")
	assert.Error(t, err)
}
