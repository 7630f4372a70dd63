package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/testutil"
)

// uniqueProgram gives each test its own program key so tests never see
// each other's rows and can run in parallel against one database.
func uniqueProgram(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestPostgresRepoUpdateAndGet(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))
	ctx := context.Background()
	program := uniqueProgram("emirates")

	bal, entry, err := r.Update(ctx, program, 72290, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 72290, bal.Miles)
	assert.Equal(t, 0, entry.PreviousMiles)
	assert.Equal(t, 72290, entry.Delta)
	assert.False(t, bal.UpdatedAt.IsZero())

	got, err := r.Get(ctx, program)
	require.NoError(t, err)
	assert.Equal(t, bal.Miles, got.Miles)
}

func TestPostgresRepoGetUntracked(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))

	_, err := r.Get(context.Background(), uniqueProgram("ghost"))
	assert.ErrorIs(t, err, models.ErrBalanceNotFound)
}

func TestPostgresRepoHistoryOrder(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))
	ctx := context.Background()
	program := uniqueProgram("qantas")

	note := "statement credit"
	_, _, err := r.Update(ctx, program, 72290, nil, nil)
	require.NoError(t, err)
	_, _, err = r.Update(ctx, program, 85000, nil, &note)
	require.NoError(t, err)

	history, err := r.History(ctx, program)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 72290, history[0].NewMiles)
	assert.Equal(t, 72290, history[1].PreviousMiles)
	assert.Equal(t, 12710, history[1].Delta)
	require.NotNil(t, history[1].Note)
	assert.Equal(t, "statement credit", *history[1].Note)
}

func TestPostgresRepoHistoryUntracked(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))

	_, err := r.History(context.Background(), uniqueProgram("ghost"))
	assert.ErrorIs(t, err, models.ErrBalanceNotFound)
}

func TestPostgresRepoTierPreserved(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))
	ctx := context.Background()
	program := uniqueProgram("emirates")

	gold := "gold"
	_, _, err := r.Update(ctx, program, 50000, &gold, nil)
	require.NoError(t, err)

	bal, _, err := r.Update(ctx, program, 60000, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, bal.Tier)
	assert.Equal(t, "gold", *bal.Tier)
}

func TestPostgresRepoConcurrentUpdates(t *testing.T) {
	r := NewPostgresBalanceRepo(testutil.NewPool(t))
	ctx := context.Background()
	program := uniqueProgram("concurrent")

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := r.Update(ctx, program, 1000*i, nil, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := r.History(ctx, program)
	require.NoError(t, err)
	require.Len(t, history, writers)

	// The advisory lock serializes the read-modify-append sequence, so
	// each entry chains off the previous one.
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].NewMiles, history[i].PreviousMiles)
	}
}
