package models

import (
	"errors"
	"fmt"
)

// ErrFilterConflict is returned when a caller supplies both include and
// exclude airline filters. It is fatal to the whole request: nothing is
// partially computed.
var ErrFilterConflict = errors.New("include_airlines and exclude_airlines are mutually exclusive")

// ErrBalanceNotFound is returned by explicit balance and history reads
// against an untracked program. Affordability classification does not use
// it — an untracked program classifies as NOT_TRACKED instead.
var ErrBalanceNotFound = errors.New("balance not tracked")

// UnmappedCabinError reports a provider cabin token with no entry in that
// provider's mapping table. The offending record is dropped and reported;
// the rest of the batch continues. Unknown tokens are never silently
// defaulted — a guessed cabin would corrupt filtering.
type UnmappedCabinError struct {
	Provider string
	Token    string
}

func (e *UnmappedCabinError) Error() string {
	return fmt.Sprintf("unmapped cabin token %q from provider %s", e.Token, e.Provider)
}

// NormalizationError reports a raw record that violates a canonical-model
// invariant. Like UnmappedCabinError it is fatal only to the single
// record, not to the batch.
type NormalizationError struct {
	RecordID  string
	Invariant string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("record %s: %s", e.RecordID, e.Invariant)
}
