package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/repo"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(repo.NewMemoryBalanceRepo(), 0)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		balance int
		cost    int
		want    models.Affordability
	}{
		{"covers exactly", 85000, 85000, models.AffordabilityAffordable},
		{"covers with room", 100000, 85000, models.AffordabilityAffordable},
		{"short within tolerance", 80000, 85000, models.AffordabilityClose},
		{"short at tolerance boundary", 75000, 85000, models.AffordabilityClose},
		{"one mile past tolerance", 74999, 85000, models.AffordabilityInsufficient},
		{"far short", 10000, 85000, models.AffordabilityInsufficient},
		{"zero balance zero cost", 0, 0, models.AffordabilityAffordable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.balance, tt.cost, DefaultCloseTolerance))
		})
	}
}

func TestUpdateBalanceValidation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.UpdateBalance(ctx, "", 1000, nil, nil)
	assert.Error(t, err)

	_, err = s.UpdateBalance(ctx, "emirates", -1, nil, nil)
	assert.ErrorIs(t, err, models.ErrNegativeMiles)
}

func TestUpdateBalanceNormalizesProgram(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.UpdateBalance(ctx, "  Emirates ", 72290, nil, nil)
	require.NoError(t, err)

	bal, err := s.GetBalance(ctx, "EMIRATES")
	require.NoError(t, err)
	assert.Equal(t, "emirates", bal.Program)
	assert.Equal(t, 72290, bal.Miles)
}

func TestAffordabilityUntrackedProgram(t *testing.T) {
	s := newService(t)

	got, err := s.Affordability(context.Background(), "aeroplan", 85000)
	require.NoError(t, err)
	assert.Equal(t, models.AffordabilityNotTracked, got)
}

func TestAnnotate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.UpdateBalance(ctx, "emirates", 85000, nil, nil)
	require.NoError(t, err)

	view := models.AggregatedView{
		Origin:      "JNB",
		Destination: "DXB",
		Dates: []models.DateAwards{{
			Date: "2026-09-14",
			Programs: []models.ProgramDayAwards{
				{
					Program: "emirates",
					Cabins: map[models.Cabin]models.CabinAward{
						models.CabinEconomy:  {Available: true, MileageCost: 42500},
						models.CabinBusiness: {Available: true, MileageCost: 91500},
						models.CabinFirst:    {Available: false},
					},
				},
				{
					Program: "qantas",
					Cabins: map[models.Cabin]models.CabinAward{
						models.CabinBusiness: {Available: true, MileageCost: 82100},
					},
				},
			},
			CheapestPerCabin: map[models.Cabin]models.CheapestAward{
				models.CabinBusiness: {Program: "qantas", MileageCost: 82100},
			},
		}},
	}

	require.NoError(t, s.Annotate(ctx, &view))

	emirates := view.Dates[0].Programs[0].Cabins
	assert.Equal(t, models.AffordabilityAffordable, emirates[models.CabinEconomy].Affordability)
	// 85,000 against 91,500 is within the 10,000-mile tolerance.
	assert.Equal(t, models.AffordabilityClose, emirates[models.CabinBusiness].Affordability)
	// Unavailable entries are never annotated.
	assert.Empty(t, emirates[models.CabinFirst].Affordability)

	qantas := view.Dates[0].Programs[1].Cabins
	assert.Equal(t, models.AffordabilityNotTracked, qantas[models.CabinBusiness].Affordability)

	cheapest := view.Dates[0].CheapestPerCabin[models.CabinBusiness]
	assert.Equal(t, models.AffordabilityNotTracked, cheapest.Affordability)
}

func TestGetHistory(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.UpdateBalance(ctx, "emirates", 72290, nil, nil)
	require.NoError(t, err)
	note := "x"
	_, err = s.UpdateBalance(ctx, "emirates", 85000, nil, &note)
	require.NoError(t, err)

	history, err := s.GetHistory(ctx, "emirates")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 12710, history[1].Delta)

	_, err = s.GetHistory(ctx, "aeroplan")
	assert.ErrorIs(t, err, models.ErrBalanceNotFound)
}
