package models

import (
	"time"

	"github.com/google/uuid"
)

// MileageBalance is the tracked point balance for one mileage program.
// Program is the unique key (lower-cased program identifier, e.g.
// "qantas"). Balances are mutated only through the balance store's
// update operation.
type MileageBalance struct {
	Program   string    `json:"program"`
	Miles     int       `json:"miles"`
	Tier      *string   `json:"tier,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceHistoryEntry is one append-only audit record written alongside
// every balance update. Entries are never mutated or deleted.
type BalanceHistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	Program       string    `json:"program"`
	PreviousMiles int       `json:"previous_miles"`
	NewMiles      int       `json:"new_miles"`
	Delta         int       `json:"delta"`
	Note          *string   `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Affordability classifies whether a tracked balance covers an award's
// mileage cost. Classification is recomputed on every query; it is never
// stored on the balance record because award costs vary per query.
type Affordability string

const (
	AffordabilityNotTracked   Affordability = "NOT_TRACKED"
	AffordabilityAffordable   Affordability = "AFFORDABLE"
	AffordabilityClose        Affordability = "CLOSE"
	AffordabilityInsufficient Affordability = "INSUFFICIENT"
)
