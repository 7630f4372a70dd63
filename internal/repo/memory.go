package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkramer/flightdeck/internal/models"
)

// MemoryBalanceRepo is an in-memory BalanceRepo. It backs deployments
// without a database and keeps unit tests free of infrastructure.
// Updates take a per-program lock so concurrent read-modify-append
// sequences for the same program cannot interleave, while updates to
// unrelated programs proceed in parallel.
type MemoryBalanceRepo struct {
	mu       sync.RWMutex
	locks    map[string]*sync.Mutex
	balances map[string]models.MileageBalance
	history  map[string][]models.BalanceHistoryEntry
}

// NewMemoryBalanceRepo constructs an empty in-memory balance repo.
func NewMemoryBalanceRepo() *MemoryBalanceRepo {
	return &MemoryBalanceRepo{
		locks:    make(map[string]*sync.Mutex),
		balances: make(map[string]models.MileageBalance),
		history:  make(map[string][]models.BalanceHistoryEntry),
	}
}

var _ BalanceRepo = (*MemoryBalanceRepo)(nil)

func (r *MemoryBalanceRepo) Get(ctx context.Context, program string) (models.MileageBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bal, ok := r.balances[program]
	if !ok {
		return models.MileageBalance{}, models.ErrBalanceNotFound
	}
	return bal, nil
}

func (r *MemoryBalanceRepo) List(ctx context.Context) ([]models.MileageBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balances := make([]models.MileageBalance, 0, len(r.balances))
	for _, bal := range r.balances {
		balances = append(balances, bal)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Program < balances[j].Program
	})
	return balances, nil
}

func (r *MemoryBalanceRepo) History(ctx context.Context, program string) ([]models.BalanceHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.balances[program]; !ok {
		return nil, models.ErrBalanceNotFound
	}
	entries := make([]models.BalanceHistoryEntry, len(r.history[program]))
	copy(entries, r.history[program])
	return entries, nil
}

func (r *MemoryBalanceRepo) Update(ctx context.Context, program string, miles int, tier, note *string) (models.MileageBalance, models.BalanceHistoryEntry, error) {
	lock := r.programLock(program)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	current, tracked := r.balances[program]
	r.mu.RUnlock()

	previous := 0
	storedTier := (*string)(nil)
	if tracked {
		previous = current.Miles
		storedTier = current.Tier
	}
	if tier == nil {
		tier = storedTier
	}

	now := time.Now().UTC()
	bal := models.MileageBalance{
		Program:   program,
		Miles:     miles,
		Tier:      tier,
		UpdatedAt: now,
	}
	entry := models.BalanceHistoryEntry{
		ID:            uuid.New(),
		Program:       program,
		PreviousMiles: previous,
		NewMiles:      miles,
		Delta:         miles - previous,
		Note:          note,
		CreatedAt:     now,
	}

	// Balance and history land under one write lock: readers never see
	// the new balance without its history entry.
	r.mu.Lock()
	r.balances[program] = bal
	r.history[program] = append(r.history[program], entry)
	r.mu.Unlock()

	return bal, entry, nil
}

// programLock returns the mutex serializing updates for one program,
// creating it on first use.
func (r *MemoryBalanceRepo) programLock(program string) *sync.Mutex {
	r.mu.RLock()
	lock, ok := r.locks[program]
	r.mu.RUnlock()
	if ok {
		return lock
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if lock, ok = r.locks[program]; ok {
		return lock
	}
	lock = &sync.Mutex{}
	r.locks[program] = lock
	return lock
}
