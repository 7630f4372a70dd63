// Package repo contains the persistence layer for mileage balances and
// their audit history. The Postgres implementation lives here next to an
// in-memory implementation used in tests and in no-database deployments.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkramer/flightdeck/internal/models"
)

// BalanceRepo defines the persistence operations for mileage balances.
// Update owns the read-modify-append sequence: the balance write and the
// history append are one atomic unit, serialized per program, so a crash
// or a concurrent update can never leave a balance without its matching
// history entry.
type BalanceRepo interface {
	// Get returns the tracked balance for a program.
	// Returns models.ErrBalanceNotFound when the program is untracked.
	Get(ctx context.Context, program string) (models.MileageBalance, error)

	// List returns all tracked balances ordered by program.
	List(ctx context.Context) ([]models.MileageBalance, error)

	// History returns a program's audit entries, oldest first.
	// Returns models.ErrBalanceNotFound when the program is untracked.
	History(ctx context.Context, program string) ([]models.BalanceHistoryEntry, error)

	// Update sets a program's balance to miles and appends the history
	// entry recording the change. The first update creates the record with
	// a previous amount of zero. A nil tier preserves the stored tier.
	Update(ctx context.Context, program string, miles int, tier, note *string) (models.MileageBalance, models.BalanceHistoryEntry, error)
}

// PostgresBalanceRepo is the pgx-backed implementation of BalanceRepo.
type PostgresBalanceRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresBalanceRepo constructs a BalanceRepo backed by the pool.
func NewPostgresBalanceRepo(pool *pgxpool.Pool) *PostgresBalanceRepo {
	return &PostgresBalanceRepo{pool: pool}
}

var _ BalanceRepo = (*PostgresBalanceRepo)(nil)

func (r *PostgresBalanceRepo) Get(ctx context.Context, program string) (models.MileageBalance, error) {
	const q = `
		SELECT program, miles, tier, updated_at
		FROM balances
		WHERE program = @program`

	row := r.pool.QueryRow(ctx, q, pgx.NamedArgs{"program": program})
	bal, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, models.ErrBalanceNotFound) {
			return models.MileageBalance{}, models.ErrBalanceNotFound
		}
		return models.MileageBalance{}, fmt.Errorf("repo.BalanceRepo.Get: %w", err)
	}
	return bal, nil
}

func (r *PostgresBalanceRepo) List(ctx context.Context) ([]models.MileageBalance, error) {
	const q = `
		SELECT program, miles, tier, updated_at
		FROM balances
		ORDER BY program`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BalanceRepo.List: %w", err)
	}
	defer rows.Close()

	balances := make([]models.MileageBalance, 0)
	for rows.Next() {
		bal, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BalanceRepo.List: scan: %w", err)
		}
		balances = append(balances, bal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BalanceRepo.List: rows: %w", err)
	}
	return balances, nil
}

func (r *PostgresBalanceRepo) History(ctx context.Context, program string) ([]models.BalanceHistoryEntry, error) {
	if _, err := r.Get(ctx, program); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, program, previous_miles, new_miles, delta, note, created_at
		FROM balance_history
		WHERE program = @program
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, q, pgx.NamedArgs{"program": program})
	if err != nil {
		return nil, fmt.Errorf("repo.BalanceRepo.History: %w", err)
	}
	defer rows.Close()

	entries := make([]models.BalanceHistoryEntry, 0)
	for rows.Next() {
		var e models.BalanceHistoryEntry
		if err := rows.Scan(&e.ID, &e.Program, &e.PreviousMiles, &e.NewMiles, &e.Delta, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.BalanceRepo.History: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BalanceRepo.History: rows: %w", err)
	}
	return entries, nil
}

func (r *PostgresBalanceRepo) Update(ctx context.Context, program string, miles int, tier, note *string) (models.MileageBalance, models.BalanceHistoryEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize updates per program. The advisory lock covers the first
	// update too, when there is no balance row to lock with FOR UPDATE.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext(@program))`, pgx.NamedArgs{"program": program}); err != nil {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: lock: %w", err)
	}

	var previous int
	var storedTier *string
	err = tx.QueryRow(ctx,
		`SELECT miles, tier FROM balances WHERE program = @program`,
		pgx.NamedArgs{"program": program},
	).Scan(&previous, &storedTier)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: read: %w", err)
	}

	if tier == nil {
		tier = storedTier
	}

	const upsert = `
		INSERT INTO balances (program, miles, tier, updated_at)
		VALUES (@program, @miles, @tier, now())
		ON CONFLICT (program) DO UPDATE
		SET miles = EXCLUDED.miles, tier = EXCLUDED.tier, updated_at = now()
		RETURNING program, miles, tier, updated_at`

	row := tx.QueryRow(ctx, upsert, pgx.NamedArgs{
		"program": program,
		"miles":   miles,
		"tier":    tier,
	})
	bal, err := scanBalance(row)
	if err != nil {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: upsert: %w", err)
	}

	entry := models.BalanceHistoryEntry{
		ID:            uuid.New(),
		Program:       program,
		PreviousMiles: previous,
		NewMiles:      miles,
		Delta:         miles - previous,
		Note:          note,
	}

	// clock_timestamp() rather than now(): now() is the transaction start
	// time, which predates the advisory lock and would let serialized
	// updates record out-of-order history timestamps.
	const insertHistory = `
		INSERT INTO balance_history (id, program, previous_miles, new_miles, delta, note, created_at)
		VALUES (@id, @program, @previous_miles, @new_miles, @delta, @note, clock_timestamp())
		RETURNING created_at`

	err = tx.QueryRow(ctx, insertHistory, pgx.NamedArgs{
		"id":             entry.ID,
		"program":        entry.Program,
		"previous_miles": entry.PreviousMiles,
		"new_miles":      entry.NewMiles,
		"delta":          entry.Delta,
		"note":           entry.Note,
	}).Scan(&entry.CreatedAt)
	if err != nil {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.MileageBalance{}, models.BalanceHistoryEntry{}, fmt.Errorf("repo.BalanceRepo.Update: commit: %w", err)
	}
	return bal, entry, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBalance(s scanner) (models.MileageBalance, error) {
	var b models.MileageBalance
	err := s.Scan(&b.Program, &b.Miles, &b.Tier, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MileageBalance{}, models.ErrBalanceNotFound
		}
		return models.MileageBalance{}, err
	}
	return b, nil
}
