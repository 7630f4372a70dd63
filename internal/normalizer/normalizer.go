// Package normalizer validates and completes pre-canonical offers emitted
// by provider adapters. Records that violate a canonical-model invariant
// are dropped and reported individually; the batch itself never fails.
package normalizer

import (
	"fmt"
	"time"

	"github.com/dkramer/flightdeck/internal/cabinmap"
	"github.com/dkramer/flightdeck/internal/models"
)

type Normalizer struct {
	defaultCurrency string
}

// New returns a Normalizer that fills missing currencies with
// defaultCurrency.
func New(defaultCurrency string) *Normalizer {
	return &Normalizer{defaultCurrency: defaultCurrency}
}

// Normalize turns raw canonical candidates into validated canonical
// offers. It resolves provider cabin tokens, rejects invariant
// violations, fills missing currencies, computes missing itinerary
// durations, and collapses structural duplicates keeping the first
// occurrence in source order. Dropped records are reported in the
// returned error slice, one entry per record.
func (n *Normalizer) Normalize(candidates []models.Offer) ([]models.Offer, []error) {
	offers := make([]models.Offer, 0, len(candidates))
	var errs []error
	seen := make(map[string]bool, len(candidates))

	for _, raw := range candidates {
		offer, err := n.normalizeOne(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		key := dedupKey(offer)
		if seen[key] {
			continue
		}
		seen[key] = true
		offers = append(offers, offer)
	}

	return offers, errs
}

func (n *Normalizer) normalizeOne(raw models.Offer) (models.Offer, error) {
	offer := raw

	if offer.Price.Amount < 0 {
		return models.Offer{}, &models.NormalizationError{
			RecordID:  offer.ID,
			Invariant: fmt.Sprintf("price.amount must not be negative, got %v", offer.Price.Amount),
		}
	}
	if offer.Price.Currency == "" {
		offer.Price.Currency = n.defaultCurrency
	}

	if len(offer.Outbound.Segments) == 0 {
		return models.Offer{}, &models.NormalizationError{
			RecordID:  offer.ID,
			Invariant: "outbound itinerary has no segments",
		}
	}
	if offer.Return != nil && len(offer.Return.Segments) == 0 {
		return models.Offer{}, &models.NormalizationError{
			RecordID:  offer.ID,
			Invariant: "return itinerary has no segments",
		}
	}

	outbound, err := n.normalizeItinerary(offer.Provider, offer.ID, offer.Outbound)
	if err != nil {
		return models.Offer{}, err
	}
	offer.Outbound = outbound

	if offer.Return != nil {
		ret, err := n.normalizeItinerary(offer.Provider, offer.ID, *offer.Return)
		if err != nil {
			return models.Offer{}, err
		}
		offer.Return = &ret
	}

	return offer, nil
}

func (n *Normalizer) normalizeItinerary(provider, recordID string, itin models.Itinerary) (models.Itinerary, error) {
	segments := make([]models.Segment, len(itin.Segments))
	copy(segments, itin.Segments)

	for i := range segments {
		seg := &segments[i]

		if !seg.Cabin.Valid() {
			if seg.CabinToken == "" {
				return models.Itinerary{}, &models.NormalizationError{
					RecordID:  recordID,
					Invariant: fmt.Sprintf("segment %s has no cabin", seg.FlightCode()),
				}
			}
			cabin, err := cabinmap.Map(provider, seg.CabinToken)
			if err != nil {
				return models.Itinerary{}, err
			}
			seg.Cabin = cabin
		}
		seg.CabinToken = ""

		if seg.Origin == seg.Destination {
			return models.Itinerary{}, &models.NormalizationError{
				RecordID:  recordID,
				Invariant: fmt.Sprintf("segment %s departs and arrives at %s", seg.FlightCode(), seg.Origin),
			}
		}
		if !seg.ArrivalTime.After(seg.DepartureTime) {
			return models.Itinerary{}, &models.NormalizationError{
				RecordID:  recordID,
				Invariant: fmt.Sprintf("segment %s arrival is not after departure", seg.FlightCode()),
			}
		}
		if seg.Duration == 0 {
			seg.Duration = seg.ArrivalTime.Sub(seg.DepartureTime)
		}

		if i > 0 {
			prev := segments[i-1]
			if prev.Destination != seg.Origin {
				return models.Itinerary{}, &models.NormalizationError{
					RecordID:  recordID,
					Invariant: fmt.Sprintf("segment %s departs %s but previous segment arrives %s", seg.FlightCode(), seg.Origin, prev.Destination),
				}
			}
			if seg.DepartureTime.Before(prev.ArrivalTime) {
				return models.Itinerary{}, &models.NormalizationError{
					RecordID:  recordID,
					Invariant: fmt.Sprintf("segment %s departs before previous segment arrives", seg.FlightCode()),
				}
			}
		}
	}

	itin.Segments = segments
	if itin.Duration == 0 {
		itin.Duration = itineraryDuration(segments)
	}
	return itin, nil
}

// itineraryDuration sums segment durations plus the layover gap between
// consecutive segments.
func itineraryDuration(segments []models.Segment) time.Duration {
	var total time.Duration
	for i, seg := range segments {
		total += seg.Duration
		if i > 0 {
			total += seg.DepartureTime.Sub(segments[i-1].ArrivalTime)
		}
	}
	return total
}

// dedupKey identifies structurally equal offers: same flight-number
// sequence, same departure timestamp, same price.
func dedupKey(o models.Offer) string {
	ret := ""
	if o.Return != nil {
		ret = o.Return.FlightCodes()
	}
	return fmt.Sprintf("%s|%s|%d|%.2f%s",
		o.Outbound.FlightCodes(), ret,
		o.DepartureTime().UnixNano(),
		o.Price.Amount, o.Price.Currency)
}
