package models

// CabinAward is a mileage program's availability for a single cabin on a
// route and date. MileageCost is meaningful only when Available is true.
type CabinAward struct {
	Available     bool          `json:"available"`
	MileageCost   int           `json:"mileage_cost,omitempty"`
	Direct        bool          `json:"direct,omitempty"`
	Airlines      []string      `json:"airlines,omitempty"`
	Affordability Affordability `json:"affordability,omitempty"`
}

// AwardAvailability is one normalized award row: what a mileage program
// offers on a route for one date. A program may emit several rows for the
// same date when they represent different operating flights.
type AwardAvailability struct {
	ID          string               `json:"id"`
	Origin      string               `json:"origin"`
	Destination string               `json:"destination"`
	Date        string               `json:"date"`
	Program     string               `json:"program"`
	Cabins      map[Cabin]CabinAward `json:"cabins"`
}

// RawCabinAward is a provider-shaped cabin entry before cabin tokens have
// been resolved. Mileage costs arrive already coerced to integers.
type RawCabinAward struct {
	Available   bool     `json:"available"`
	MileageCost int      `json:"mileage_cost"`
	Direct      bool     `json:"direct"`
	Airlines    []string `json:"airlines,omitempty"`
}

// RawAward is an award row as emitted by a provider adapter, with cabin
// entries keyed by the provider's own cabin vocabulary. The award
// normalizer resolves the keys and drops rows carrying unknown tokens.
type RawAward struct {
	ID          string                   `json:"id"`
	Provider    string                   `json:"provider"`
	Program     string                   `json:"program"`
	Origin      string                   `json:"origin"`
	Destination string                   `json:"destination"`
	Date        string                   `json:"date"`
	Cabins      map[string]RawCabinAward `json:"cabins"`
}

// ProgramDayAwards is the merged view of one (date, program) pair.
// Cabins holds exactly one entry per canonical cabin, synthesized as
// unavailable when the program reported nothing for that cabin.
// Flights keeps the underlying rows when a program reported more than
// one operating flight for the date.
type ProgramDayAwards struct {
	Program string               `json:"program"`
	Date    string               `json:"date"`
	Cabins  map[Cabin]CabinAward `json:"cabins"`
	Flights []AwardAvailability  `json:"flights,omitempty"`
}

// CheapestAward identifies the program with the lowest mileage cost for
// one cabin on one date.
type CheapestAward struct {
	Program       string        `json:"program"`
	MileageCost   int           `json:"mileage_cost"`
	Affordability Affordability `json:"affordability,omitempty"`
}

// DateAwards groups the per-program award views for a single date.
type DateAwards struct {
	Date             string                  `json:"date"`
	Programs         []ProgramDayAwards      `json:"programs"`
	CheapestPerCabin map[Cabin]CheapestAward `json:"cheapest_per_cabin"`
}

// AggregatedView is the comparative award view for a route across the
// requested dates.
type AggregatedView struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Dates       []DateAwards `json:"dates"`
}

// BookingClassCount is the seat count for a single booking class within
// a cabin, e.g. J9 or I2. Adapters fill CabinToken; the engine resolves
// it into Cabin.
type BookingClassCount struct {
	Cabin        Cabin  `json:"cabin,omitempty"`
	CabinToken   string `json:"cabin_token,omitempty"`
	BookingClass string `json:"booking_class"`
	Seats        int    `json:"seats"`
}

// FareClassAvailability is the per-booking-class seat inventory for one
// flight, as reported by a GDS-backed provider.
type FareClassAvailability struct {
	Carrier       string              `json:"carrier"`
	FlightNumber  string              `json:"flight_number"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	Date          string              `json:"date"`
	Classes       []BookingClassCount `json:"classes"`
}

// FlightCode returns the full flight designator, e.g. "EK766".
func (f FareClassAvailability) FlightCode() string {
	return f.Carrier + f.FlightNumber
}
