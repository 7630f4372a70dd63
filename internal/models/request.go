package models

type SearchRequest struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	DepartureDate   string   `json:"departure_date"`
	ReturnDate      *string  `json:"return_date,omitempty"`
	Adults          int      `json:"adults"`
	Cabin           string   `json:"cabin,omitempty"`
	DirectOnly      bool     `json:"direct_only,omitempty"`
	IncludeAirlines []string `json:"include_airlines,omitempty"`
	ExcludeAirlines []string `json:"exclude_airlines,omitempty"`
	MaxResults      int      `json:"max_results,omitempty"`
	Currency        string   `json:"currency,omitempty"`
}

func (r *SearchRequest) Validate() error {
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if r.Adults <= 0 {
		r.Adults = 1
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 10
	}
	return nil
}

type AwardSearchRequest struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date,omitempty"`
	Programs    []string `json:"programs,omitempty"`
	Cabin       string   `json:"cabin,omitempty"`
	DirectOnly  bool     `json:"direct_only,omitempty"`
	Cheapest    bool     `json:"cheapest,omitempty"`
}

func (r *AwardSearchRequest) Validate() error {
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.StartDate == "" {
		return ErrMissingDepartureDate
	}
	if r.EndDate == "" {
		r.EndDate = r.StartDate
	}
	return nil
}

type BalanceUpdateRequest struct {
	Miles int     `json:"miles"`
	Tier  *string `json:"tier,omitempty"`
	Note  *string `json:"note,omitempty"`
}

func (r *BalanceUpdateRequest) Validate() error {
	if r.Miles < 0 {
		return ErrNegativeMiles
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrNegativeMiles        ValidationError = "miles must not be negative"
)
