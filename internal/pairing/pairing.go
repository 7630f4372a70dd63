// Package pairing combines one-way outbound and return legs into
// round-trip offers. Pools are truncated to their cheapest legs before
// pairing so the cross product stays bounded at O(N²) instead of
// exploding with the raw pool sizes.
package pairing

import (
	"sort"

	"github.com/dkramer/flightdeck/internal/models"
)

// DefaultPoolLimit bounds each leg pool when the caller does not supply
// a max-results hint.
const DefaultPoolLimit = 25

// PoolLimit derives the per-pool truncation size from the caller's
// requested max results, falling back to ceiling (or DefaultPoolLimit)
// when the caller did not ask for a specific count.
func PoolLimit(maxResults, ceiling int) int {
	if maxResults > 0 {
		return maxResults
	}
	if ceiling > 0 {
		return ceiling
	}
	return DefaultPoolLimit
}

// Pair builds the full cross product of outbound and return legs, after
// truncating each pool to its cheapest poolLimit entries. The combined
// price is the sum of the leg prices; legs are carried unchanged. Pairs
// yielding identical flight-number sequences keep only the cheaper
// instance. The result is sorted ascending by total price with ties
// broken by (outbound departure, return departure). An empty pool yields
// an empty result — no availability is not an error.
func Pair(outbound, ret []models.Offer, poolLimit int) []models.Offer {
	if len(outbound) == 0 || len(ret) == 0 {
		return []models.Offer{}
	}

	outbound = cheapest(outbound, poolLimit)
	ret = cheapest(ret, poolLimit)

	best := make(map[string]models.Offer, len(outbound)*len(ret))
	order := make([]string, 0, len(outbound)*len(ret))

	for _, out := range outbound {
		for _, in := range ret {
			combined := combine(out, in)
			key := combined.Outbound.FlightCodes() + "|" + combined.Return.FlightCodes()

			existing, ok := best[key]
			if !ok {
				best[key] = combined
				order = append(order, key)
				continue
			}
			if combined.Price.Amount < existing.Price.Amount {
				best[key] = combined
			}
		}
	}

	pairs := make([]models.Offer, 0, len(order))
	for _, key := range order {
		pairs = append(pairs, best[key])
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Price.Amount != pairs[j].Price.Amount {
			return pairs[i].Price.Amount < pairs[j].Price.Amount
		}
		di, dj := pairs[i].Outbound.DepartureTime(), pairs[j].Outbound.DepartureTime()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return pairs[i].Return.DepartureTime().Before(pairs[j].Return.DepartureTime())
	})

	return pairs
}

// combine joins an outbound and a return one-way offer into one
// round-trip offer priced at the sum of the legs.
func combine(out, in models.Offer) models.Offer {
	retItin := in.Outbound
	provider := out.Provider
	if in.Provider != out.Provider {
		provider = out.Provider + "+" + in.Provider
	}
	return models.Offer{
		ID:       out.ID + "+" + in.ID,
		Provider: provider,
		Price: models.Price{
			Amount:   out.Price.Amount + in.Price.Amount,
			Currency: out.Price.Currency,
		},
		Outbound: out.Outbound,
		Return:   &retItin,
	}
}

// cheapest returns the limit lowest-priced offers, preserving source
// order among equal prices.
func cheapest(offers []models.Offer, limit int) []models.Offer {
	if limit <= 0 || len(offers) <= limit {
		return offers
	}
	sorted := make([]models.Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.Amount < sorted[j].Price.Amount
	})
	return sorted[:limit]
}
