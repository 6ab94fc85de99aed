package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mca-api/internal/domain"
)

type PgAwardCycleRepository struct {
	db querier
}

func NewAwardCycleRepository(db querier) *PgAwardCycleRepository {
	return &PgAwardCycleRepository{db: db}
}

// GetByYear gets the award cycle of a year
func (r *PgAwardCycleRepository) GetByYear(ctx context.Context, year int) (*domain.AwardCycle, error) {
	var (
		cycle domain.AwardCycle
		phase string
	)
	err := r.db.QueryRow(ctx, `SELECT year, phase FROM award_cycles WHERE year = $1`, year).
		Scan(&cycle.Year, &phase)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get award cycle: %w", err)
	}

	cycle.Phase, err = domain.ParsePhase(phase)
	if err != nil {
		return nil, fmt.Errorf("failed to parse award cycle %d: %w", year, err)
	}
	return &cycle, nil
}

// Upsert creates a cycle or advances its phase. Moving to an earlier phase
// leaves the row untouched and returns ErrPhaseRegression.
func (r *PgAwardCycleRepository) Upsert(ctx context.Context, cycle *domain.AwardCycle) error {
	query := `
		INSERT INTO award_cycles (year, phase)
		VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE SET phase = EXCLUDED.phase, updated_at = NOW()
		WHERE array_position($3::text[], award_cycles.phase) <= array_position($3::text[], EXCLUDED.phase)
	`
	tag, err := r.db.Exec(ctx, query, cycle.Year, string(cycle.Phase), domain.PhaseNames())
	if err != nil {
		return fmt.Errorf("failed to upsert award cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPhaseRegression
	}
	return nil
}
