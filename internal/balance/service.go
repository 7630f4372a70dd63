// Package balance holds the business logic for tracked mileage balances:
// validated updates with audit history, and affordability classification
// of award costs against tracked balances.
package balance

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkramer/flightdeck/internal/models"
	"github.com/dkramer/flightdeck/internal/repo"
)

// DefaultCloseTolerance is the absolute mileage shortfall still
// classified as CLOSE. It is a fixed amount, not a percentage.
const DefaultCloseTolerance = 10000

// Service implements balance operations on top of a BalanceRepo.
type Service struct {
	repo           repo.BalanceRepo
	closeTolerance int
}

// NewService constructs a balance Service. A closeTolerance of zero or
// less falls back to DefaultCloseTolerance.
func NewService(r repo.BalanceRepo, closeTolerance int) *Service {
	if closeTolerance <= 0 {
		closeTolerance = DefaultCloseTolerance
	}
	return &Service{repo: r, closeTolerance: closeTolerance}
}

// UpdateBalance sets a program's balance and appends the audit entry
// recording the change. The repo performs both writes as one atomic,
// per-program-serialized unit.
func (s *Service) UpdateBalance(ctx context.Context, program string, miles int, tier, note *string) (models.MileageBalance, error) {
	program = normalizeProgram(program)
	if program == "" {
		return models.MileageBalance{}, fmt.Errorf("balance.Service.UpdateBalance: program is required")
	}
	if miles < 0 {
		return models.MileageBalance{}, fmt.Errorf("balance.Service.UpdateBalance: %w", models.ErrNegativeMiles)
	}

	bal, _, err := s.repo.Update(ctx, program, miles, tier, note)
	if err != nil {
		return models.MileageBalance{}, err
	}
	return bal, nil
}

// GetBalance returns the tracked balance for a program.
func (s *Service) GetBalance(ctx context.Context, program string) (models.MileageBalance, error) {
	return s.repo.Get(ctx, normalizeProgram(program))
}

// ListBalances returns every tracked balance ordered by program.
func (s *Service) ListBalances(ctx context.Context) ([]models.MileageBalance, error) {
	return s.repo.List(ctx)
}

// GetHistory returns a program's audit entries, oldest first.
func (s *Service) GetHistory(ctx context.Context, program string) ([]models.BalanceHistoryEntry, error) {
	return s.repo.History(ctx, normalizeProgram(program))
}

// Affordability classifies whether the tracked balance for program covers
// an award costing awardCost miles. An untracked program is NOT_TRACKED,
// never an error.
func (s *Service) Affordability(ctx context.Context, program string, awardCost int) (models.Affordability, error) {
	bal, err := s.repo.Get(ctx, normalizeProgram(program))
	if err != nil {
		if err == models.ErrBalanceNotFound {
			return models.AffordabilityNotTracked, nil
		}
		return "", err
	}
	return Classify(bal.Miles, awardCost, s.closeTolerance), nil
}

// Annotate overlays affordability onto every available cabin entry and
// cheapest-per-cabin pointer in the view. Balances are read once per call
// so the whole view reflects one consistent snapshot.
func (s *Service) Annotate(ctx context.Context, view *models.AggregatedView) error {
	balances, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	miles := make(map[string]int, len(balances))
	for _, bal := range balances {
		miles[bal.Program] = bal.Miles
	}

	classify := func(program string, cost int) models.Affordability {
		m, tracked := miles[program]
		if !tracked {
			return models.AffordabilityNotTracked
		}
		return Classify(m, cost, s.closeTolerance)
	}

	for d := range view.Dates {
		day := &view.Dates[d]
		for p := range day.Programs {
			prog := &day.Programs[p]
			for cabin, entry := range prog.Cabins {
				if !entry.Available {
					continue
				}
				entry.Affordability = classify(prog.Program, entry.MileageCost)
				prog.Cabins[cabin] = entry
			}
		}
		for cabin, cheapest := range day.CheapestPerCabin {
			cheapest.Affordability = classify(cheapest.Program, cheapest.MileageCost)
			day.CheapestPerCabin[cabin] = cheapest
		}
	}
	return nil
}

// Classify is the pure affordability classification: AFFORDABLE when the
// balance covers the cost, CLOSE when it falls short by no more than
// tolerance miles, INSUFFICIENT otherwise. Exactly one outcome holds for
// any (balance, cost) pair.
func Classify(balanceMiles, awardCost, tolerance int) models.Affordability {
	switch {
	case balanceMiles >= awardCost:
		return models.AffordabilityAffordable
	case balanceMiles >= awardCost-tolerance:
		return models.AffordabilityClose
	default:
		return models.AffordabilityInsufficient
	}
}

func normalizeProgram(program string) string {
	return strings.ToLower(strings.TrimSpace(program))
}
