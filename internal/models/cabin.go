package models

import (
	"fmt"
	"strings"
)

// Cabin is the canonical service-class tier. Values are ordered ascending,
// economy lowest, so cabins can be compared with < and >.
// The zero value means "not set" and never appears in a normalized offer.
type Cabin int

const (
	CabinEconomy Cabin = iota + 1
	CabinPremiumEconomy
	CabinBusiness
	CabinFirst
)

var cabinNames = map[Cabin]string{
	CabinEconomy:        "ECONOMY",
	CabinPremiumEconomy: "PREMIUM_ECONOMY",
	CabinBusiness:       "BUSINESS",
	CabinFirst:          "FIRST",
}

// AllCabins lists every cabin in ascending order. The award aggregator
// iterates this to synthesize unavailable rows for cabins a program omitted.
var AllCabins = []Cabin{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst}

func (c Cabin) String() string {
	if name, ok := cabinNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CABIN(%d)", int(c))
}

// Valid reports whether c is one of the four canonical cabins.
func (c Cabin) Valid() bool {
	_, ok := cabinNames[c]
	return ok
}

// MarshalText implements encoding.TextMarshaler. Text marshalling, not
// JSON, so cabin-keyed maps serialize with readable keys too.
func (c Cabin) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cabin) UnmarshalText(text []byte) error {
	parsed, err := ParseCabin(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// cabinShortcuts maps user-facing shortcuts to canonical cabins.
// Covers the single-letter booking codes and common abbreviations
// accepted on the command line and in API requests.
var cabinShortcuts = map[string]Cabin{
	"economy":         CabinEconomy,
	"eco":             CabinEconomy,
	"y":               CabinEconomy,
	"premium_economy": CabinPremiumEconomy,
	"premium":         CabinPremiumEconomy,
	"pey":             CabinPremiumEconomy,
	"w":               CabinPremiumEconomy,
	"business":        CabinBusiness,
	"biz":             CabinBusiness,
	"j":               CabinBusiness,
	"first":           CabinFirst,
	"f":               CabinFirst,
}

// ParseCabin parses a canonical cabin name or a shortcut ("j", "biz",
// "premium") into a Cabin. Parsing is case-insensitive.
func ParseCabin(s string) (Cabin, error) {
	if c, ok := cabinShortcuts[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown cabin %q", s)
}
