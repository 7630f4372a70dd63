package models

import (
	"strings"
	"time"
)

// Price is a cash amount in an ISO 4217 currency.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Segment is a single flown flight number between two airports.
// Provider adapters fill CabinToken with their own vocabulary; the
// normalizer resolves it into Cabin and rejects tokens it cannot map.
type Segment struct {
	Carrier       string        `json:"carrier"`
	FlightNumber  string        `json:"flight_number"`
	Origin        string        `json:"origin"`
	Destination   string        `json:"destination"`
	DepartureTime time.Time     `json:"departure_time"`
	ArrivalTime   time.Time     `json:"arrival_time"`
	Duration      time.Duration `json:"duration"`
	Cabin         Cabin         `json:"cabin,omitempty"`
	CabinToken    string        `json:"cabin_token,omitempty"`
	Aircraft      *string       `json:"aircraft,omitempty"`
}

// FlightCode returns the full flight designator, e.g. "EK766".
func (s Segment) FlightCode() string {
	return s.Carrier + s.FlightNumber
}

// Itinerary is one one-way leg, possibly connecting through
// intermediate airports.
type Itinerary struct {
	Segments []Segment     `json:"segments"`
	Duration time.Duration `json:"duration"`
}

// Origin returns the first departure airport of the leg.
func (i Itinerary) Origin() string {
	if len(i.Segments) == 0 {
		return ""
	}
	return i.Segments[0].Origin
}

// Destination returns the final arrival airport of the leg.
func (i Itinerary) Destination() string {
	if len(i.Segments) == 0 {
		return ""
	}
	return i.Segments[len(i.Segments)-1].Destination
}

// DepartureTime returns the departure time of the first segment.
func (i Itinerary) DepartureTime() time.Time {
	if len(i.Segments) == 0 {
		return time.Time{}
	}
	return i.Segments[0].DepartureTime
}

// ArrivalTime returns the arrival time of the last segment.
func (i Itinerary) ArrivalTime() time.Time {
	if len(i.Segments) == 0 {
		return time.Time{}
	}
	return i.Segments[len(i.Segments)-1].ArrivalTime
}

// Direct reports whether the leg is a single nonstop flight.
func (i Itinerary) Direct() bool {
	return len(i.Segments) == 1
}

// FlightCodes returns the flight designators of the leg joined with "/",
// e.g. "EK766/EK412". Used as a dedup key by the pairing engine.
func (i Itinerary) FlightCodes() string {
	codes := make([]string, len(i.Segments))
	for n, s := range i.Segments {
		codes[n] = s.FlightCode()
	}
	return strings.Join(codes, "/")
}

// Offer is one priced itinerary: an outbound leg and, for round trips,
// a return leg. Offers are ephemeral — constructed per search request
// and discarded with the response.
type Offer struct {
	ID       string     `json:"id"`
	Provider string     `json:"provider"`
	Price    Price      `json:"price"`
	Outbound Itinerary  `json:"outbound"`
	Return   *Itinerary `json:"return,omitempty"`
}

// Itineraries returns the offer's legs in order, one for a one-way offer,
// two for a round trip.
func (o Offer) Itineraries() []Itinerary {
	if o.Return == nil {
		return []Itinerary{o.Outbound}
	}
	return []Itinerary{o.Outbound, *o.Return}
}

// TotalDuration sums the durations of all legs.
func (o Offer) TotalDuration() time.Duration {
	var total time.Duration
	for _, itin := range o.Itineraries() {
		total += itin.Duration
	}
	return total
}

// DepartureTime returns the outbound departure time.
func (o Offer) DepartureTime() time.Time {
	return o.Outbound.DepartureTime()
}
