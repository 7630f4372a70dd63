package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCabin(t *testing.T) {
	tests := []struct {
		in   string
		want Cabin
	}{
		{"economy", CabinEconomy},
		{"eco", CabinEconomy},
		{"y", CabinEconomy},
		{"Y", CabinEconomy},
		{"premium_economy", CabinPremiumEconomy},
		{"premium", CabinPremiumEconomy},
		{"pey", CabinPremiumEconomy},
		{"w", CabinPremiumEconomy},
		{"business", CabinBusiness},
		{"BIZ", CabinBusiness},
		{"j", CabinBusiness},
		{"first", CabinFirst},
		{"f", CabinFirst},
		{"  f  ", CabinFirst},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCabin(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCabinUnknown(t *testing.T) {
	for _, in := range []string{"", "suite", "z", "coach"} {
		_, err := ParseCabin(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestCabinOrdering(t *testing.T) {
	assert.True(t, CabinEconomy < CabinPremiumEconomy)
	assert.True(t, CabinPremiumEconomy < CabinBusiness)
	assert.True(t, CabinBusiness < CabinFirst)
}

func TestCabinValid(t *testing.T) {
	for _, c := range AllCabins {
		assert.True(t, c.Valid())
	}
	assert.False(t, Cabin(0).Valid())
	assert.False(t, Cabin(5).Valid())
}

func TestCabinJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(CabinPremiumEconomy)
	require.NoError(t, err)
	assert.Equal(t, `"PREMIUM_ECONOMY"`, string(data))

	var c Cabin
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, CabinPremiumEconomy, c)
}
