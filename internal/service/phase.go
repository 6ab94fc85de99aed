package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/pkg/errors"
)

var yearPattern = regexp.MustCompile(`^20\d\d$`)

// PhaseGate answers timing questions about the award cycle of a year
type PhaseGate struct {
	cycles repository.AwardCycleRepository
	now    func() time.Time
}

func NewPhaseGate(cycles repository.AwardCycleRepository, now func() time.Time) *PhaseGate {
	if now == nil {
		now = time.Now
	}
	return &PhaseGate{cycles: cycles, now: now}
}

// ResolveYear returns the requested year when it looks like 20xx, otherwise last year
func (g *PhaseGate) ResolveYear(requested string) int {
	if yearPattern.MatchString(requested) {
		year, _ := strconv.Atoi(requested)
		return year
	}
	return g.now().Year() - 1
}

// Cycle loads the award cycle of year. A missing cycle is a not-found error.
func (g *PhaseGate) Cycle(ctx context.Context, year int) (*domain.AwardCycle, error) {
	cycle, err := g.cycles.GetByYear(ctx, year)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load award cycle", err)
	}
	if cycle == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("No MCA found for %d", year))
	}
	return cycle, nil
}

// IsPhaseStarted reports whether the cycle of year has reached phase
func (g *PhaseGate) IsPhaseStarted(ctx context.Context, phase domain.Phase, year int) (bool, error) {
	cycle, err := g.Cycle(ctx, year)
	if err != nil {
		return false, err
	}
	return cycle.HasStarted(phase), nil
}

// IsPhase reports whether the cycle of year is exactly in phase
func (g *PhaseGate) IsPhase(ctx context.Context, phase domain.Phase, year int) (bool, error) {
	cycle, err := g.Cycle(ctx, year)
	if err != nil {
		return false, err
	}
	return cycle.IsIn(phase), nil
}

// requireStarted turns a not-yet-started phase into a hard error
func (g *PhaseGate) requireStarted(ctx context.Context, phase domain.Phase, year int) error {
	ok, err := g.IsPhaseStarted(ctx, phase, year)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewPhaseClosedError(string(phase), year)
	}
	return nil
}

// requirePhase turns any other phase into a hard error
func (g *PhaseGate) requirePhase(ctx context.Context, phase domain.Phase, year int) error {
	ok, err := g.IsPhase(ctx, phase, year)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewPhaseClosedError(string(phase), year)
	}
	return nil
}
