// Package filter applies inclusion, exclusion, cabin, and direct-only
// filters to canonical offers and orders the result. The pipeline is pure
// and uses a stable sort, so output is deterministic across runs on
// identical input and applying it twice is a no-op.
package filter

import (
	"sort"
	"strings"

	"github.com/dkramer/flightdeck/internal/models"
)

// Options selects which offers survive and how the survivors are ordered.
type Options struct {
	// Cabin keeps offers where every segment's cabin equals the requested
	// cabin exactly. Zero means no cabin filter.
	Cabin models.Cabin

	// DirectOnly keeps offers whose every itinerary has exactly one segment.
	DirectOnly bool

	// IncludeAirlines keeps offers where every segment's carrier is in the
	// set. Mutually exclusive with ExcludeAirlines.
	IncludeAirlines []string

	// ExcludeAirlines keeps offers where no segment's carrier is in the set.
	ExcludeAirlines []string

	// MaxResults truncates the sorted result. Zero means no truncation.
	MaxResults int
}

// Apply filters offers and sorts them ascending by price, breaking price
// ties by total duration and then by departure time. Supplying both
// include and exclude airline sets is a caller error and aborts the whole
// request with models.ErrFilterConflict.
func Apply(offers []models.Offer, opts Options) ([]models.Offer, error) {
	if len(opts.IncludeAirlines) > 0 && len(opts.ExcludeAirlines) > 0 {
		return nil, models.ErrFilterConflict
	}

	result := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if matches(o, opts) {
			result = append(result, o)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Price.Amount != result[j].Price.Amount {
			return result[i].Price.Amount < result[j].Price.Amount
		}
		if result[i].TotalDuration() != result[j].TotalDuration() {
			return result[i].TotalDuration() < result[j].TotalDuration()
		}
		return result[i].DepartureTime().Before(result[j].DepartureTime())
	})

	if opts.MaxResults > 0 && len(result) > opts.MaxResults {
		result = result[:opts.MaxResults]
	}

	return result, nil
}

func matches(o models.Offer, opts Options) bool {
	for _, itin := range o.Itineraries() {
		if opts.DirectOnly && !itin.Direct() {
			return false
		}
		for _, seg := range itin.Segments {
			if opts.Cabin.Valid() && seg.Cabin != opts.Cabin {
				return false
			}
			if len(opts.IncludeAirlines) > 0 && !containsFold(opts.IncludeAirlines, seg.Carrier) {
				return false
			}
			if len(opts.ExcludeAirlines) > 0 && containsFold(opts.ExcludeAirlines, seg.Carrier) {
				return false
			}
		}
	}
	return true
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
