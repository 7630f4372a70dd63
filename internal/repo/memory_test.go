package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkramer/flightdeck/internal/models"
)

func TestMemoryRepoGetUntracked(t *testing.T) {
	r := NewMemoryBalanceRepo()

	_, err := r.Get(context.Background(), "emirates")
	assert.ErrorIs(t, err, models.ErrBalanceNotFound)

	_, err = r.History(context.Background(), "emirates")
	assert.ErrorIs(t, err, models.ErrBalanceNotFound)
}

func TestMemoryRepoUpdateCreatesAndAppends(t *testing.T) {
	r := NewMemoryBalanceRepo()
	ctx := context.Background()

	bal, entry, err := r.Update(ctx, "emirates", 72290, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 72290, bal.Miles)
	assert.Equal(t, 0, entry.PreviousMiles)
	assert.Equal(t, 72290, entry.Delta)

	note := "statement credit"
	bal, entry, err = r.Update(ctx, "emirates", 85000, nil, &note)
	require.NoError(t, err)
	assert.Equal(t, 85000, bal.Miles)
	assert.Equal(t, 72290, entry.PreviousMiles)
	assert.Equal(t, 12710, entry.Delta)
	require.NotNil(t, entry.Note)
	assert.Equal(t, "statement credit", *entry.Note)

	history, err := r.History(ctx, "emirates")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 72290, history[0].NewMiles)
	assert.Equal(t, 85000, history[1].NewMiles)
}

func TestMemoryRepoUpdatePreservesTier(t *testing.T) {
	r := NewMemoryBalanceRepo()
	ctx := context.Background()

	gold := "gold"
	_, _, err := r.Update(ctx, "emirates", 50000, &gold, nil)
	require.NoError(t, err)

	// A nil tier keeps the stored one.
	bal, _, err := r.Update(ctx, "emirates", 60000, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, bal.Tier)
	assert.Equal(t, "gold", *bal.Tier)
}

func TestMemoryRepoListOrdered(t *testing.T) {
	r := NewMemoryBalanceRepo()
	ctx := context.Background()

	for _, program := range []string{"qantas", "aeroplan", "emirates"} {
		_, _, err := r.Update(ctx, program, 1000, nil, nil)
		require.NoError(t, err)
	}

	balances, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, "aeroplan", balances[0].Program)
	assert.Equal(t, "emirates", balances[1].Program)
	assert.Equal(t, "qantas", balances[2].Program)
}

func TestMemoryRepoConcurrentUpdates(t *testing.T) {
	r := NewMemoryBalanceRepo()
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			note := fmt.Sprintf("update %d", i)
			_, _, err := r.Update(ctx, "emirates", 1000*i, nil, &note)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := r.History(ctx, "emirates")
	require.NoError(t, err)
	require.Len(t, history, writers)

	// Every entry's previous must equal its predecessor's new value:
	// no interleaved read-modify-append sequences.
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].NewMiles, history[i].PreviousMiles)
	}
}
