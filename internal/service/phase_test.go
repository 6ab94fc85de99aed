package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-api/internal/domain"
	"mca-api/internal/repository/memory"
)

func TestPhaseGate_ResolveYear(t *testing.T) {
	gate := NewPhaseGate(memory.NewStore(), fixedNow)

	tests := []struct {
		requested string
		expected  int
	}{
		{"2023", 2023},
		{"2020", 2020},
		{"2099", 2099},
		{"", 2023},
		{"1999", 2023},
		{"20234", 2023},
		{"abcd", 2023},
		{"nominations", 2023},
		{" 2021", 2023},
	}

	for _, tt := range tests {
		t.Run("requested "+tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.expected, gate.ResolveYear(tt.requested))
		})
	}
}

func TestPhaseGate_Phases(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, &domain.AwardCycle{Year: 2023, Phase: domain.PhaseVoting}))
	gate := NewPhaseGate(store, fixedNow)

	tests := []struct {
		phase   domain.Phase
		started bool
		exact   bool
	}{
		{domain.PhasePending, true, false},
		{domain.PhaseNomination, true, false},
		{domain.PhaseVoting, true, true},
		{domain.PhaseResults, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			started, err := gate.IsPhaseStarted(ctx, tt.phase, 2023)
			require.NoError(t, err)
			assert.Equal(t, tt.started, started)

			exact, err := gate.IsPhase(ctx, tt.phase, 2023)
			require.NoError(t, err)
			assert.Equal(t, tt.exact, exact)
		})
	}

	_, err := gate.IsPhase(ctx, domain.PhaseNomination, 2010)
	requireAppError(t, err, http.StatusNotFound)
}

func TestPhaseGate_DefaultClock(t *testing.T) {
	gate := NewPhaseGate(memory.NewStore(), nil)
	assert.Equal(t, time.Now().Year()-1, gate.ResolveYear(""))
}

func TestEligibility(t *testing.T) {
	e := NewEligibilityEvaluator(3)
	veteran := &domain.User{
		RegisteredAt: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		Activity: []domain.ModeActivity{
			{Mode: domain.ModeStandard, Year: 2021, Count: 2},
			{Mode: domain.ModeStandard, Year: 2022, Count: 1},
			{Mode: domain.ModeTaiko, Year: 2024, Count: 10},
		},
	}
	newcomer := &domain.User{
		RegisteredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Activity:     []domain.ModeActivity{{Mode: domain.ModeStandard, Year: 2023, Count: 9}},
	}
	restricted := &domain.User{Restricted: true, Activity: veteran.Activity}

	tests := []struct {
		name     string
		user     *domain.User
		mode     domain.Mode
		year     int
		eligible bool
		forMode  bool
	}{
		{"activity sums across years", veteran, domain.ModeStandard, 2022, true, true},
		{"activity after the year is ignored", veteran, domain.ModeStandard, 2021, false, false},
		{"later years count toward later cycles", veteran, domain.ModeTaiko, 2024, true, true},
		{"other mode", veteran, domain.ModeMania, 2022, true, false},
		{"registered after the year", newcomer, domain.ModeStandard, 2023, false, true},
		{"restricted", restricted, domain.ModeStandard, 2022, false, true},
		{"nil user", nil, domain.ModeStandard, 2022, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eligible, e.IsEligible(tt.user, tt.year))
			assert.Equal(t, tt.forMode, e.IsEligibleFor(tt.user, tt.mode, tt.year))
		})
	}

	assert.True(t, NewEligibilityEvaluator(0).IsEligibleFor(veteran, domain.ModeStandard, 2021),
		"non-positive thresholds fall back to the default")
}
