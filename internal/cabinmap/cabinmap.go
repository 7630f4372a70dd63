// Package cabinmap translates provider-specific cabin and fare-class
// vocabularies into the canonical cabin enum. Each provider speaks its own
// dialect: Amadeus uses cabin names, seats.aero uses single-letter booking
// codes, Google Flights data uses display labels and numeric travel-class
// codes. The tables are static and the lookup is pure.
package cabinmap

import (
	"strings"

	"github.com/dkramer/flightdeck/internal/models"
)

// tables holds one mapping table per provider. Lookups are
// case-insensitive; keys are stored lower-cased.
var tables = map[string]map[string]models.Cabin{
	"amadeus": {
		"economy":         models.CabinEconomy,
		"premium_economy": models.CabinPremiumEconomy,
		"business":        models.CabinBusiness,
		"first":           models.CabinFirst,
	},
	"duffel": {
		"economy":         models.CabinEconomy,
		"premium_economy": models.CabinPremiumEconomy,
		"business":        models.CabinBusiness,
		"first":           models.CabinFirst,
	},
	"seatsaero": {
		"y": models.CabinEconomy,
		"w": models.CabinPremiumEconomy,
		"j": models.CabinBusiness,
		"f": models.CabinFirst,
	},
	"serpapi": {
		"economy":         models.CabinEconomy,
		"premium economy": models.CabinPremiumEconomy,
		"business":        models.CabinBusiness,
		"first":           models.CabinFirst,
		// Numeric travel_class codes.
		"1": models.CabinEconomy,
		"2": models.CabinPremiumEconomy,
		"3": models.CabinBusiness,
		"4": models.CabinFirst,
	},
}

// Map resolves a provider cabin token into the canonical cabin.
// An unknown token — or an unknown provider — yields an
// *models.UnmappedCabinError carrying the offending token. Map never
// falls back to a default cabin.
func Map(provider, token string) (models.Cabin, error) {
	table, ok := tables[strings.ToLower(provider)]
	if !ok {
		return 0, &models.UnmappedCabinError{Provider: provider, Token: token}
	}
	cabin, ok := table[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, &models.UnmappedCabinError{Provider: provider, Token: token}
	}
	return cabin, nil
}
