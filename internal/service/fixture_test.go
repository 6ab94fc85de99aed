package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mca-api/internal/domain"
	"mca-api/internal/repository/memory"
	"mca-api/pkg/logger"
)

var fixedNow = func() time.Time { return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.NominationEvent
	err    error
}

func (p *recordingPublisher) PublishNominationEvent(_ context.Context, e domain.NominationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []domain.NominationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.NominationEvent(nil), p.events...)
}

type fixture struct {
	store     *memory.Store
	svc       *NominationService
	gate      *PhaseGate
	events    *recordingPublisher
	nominator *domain.User
	grand     domain.Category
	expert    domain.Category
	users     domain.Category
	taiko     domain.Category
	old       domain.Category
}

func f64(v float64) *float64 { return &v }

func approved(year int) time.Time { return time.Date(year, 5, 1, 0, 0, 0, 0, time.UTC) }

// newFixture seeds a 2023 cycle in the nomination phase with a grand award, a
// filtered non-required category, a user category and a taiko category
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	repos := store.Repositories()
	require.NoError(t, repos.AwardCycles.Upsert(ctx, &domain.AwardCycle{Year: 2023, Phase: domain.PhaseNomination}))
	require.NoError(t, repos.AwardCycles.Upsert(ctx, &domain.AwardCycle{Year: 2022, Phase: domain.PhaseResults}))

	nominator := store.AddUser(domain.User{
		OsuID: 1001, Username: "nominator",
		RegisteredAt: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		Activity:     []domain.ModeActivity{{Mode: domain.ModeStandard, Year: 2022, Count: 4}},
	})
	store.AddUser(domain.User{OsuID: 2002, Username: "mapper"})
	store.AddUser(domain.User{OsuID: 3003, Username: "another mapper"})

	for id := 10; id < 20; id++ {
		store.AddBeatmapset(domain.Beatmapset{
			ID: id, Artist: "artist", Title: "title", CreatorName: "mapper", ApprovedDate: approved(2023),
			Beatmaps: []domain.Beatmap{
				{ID: id * 10, BeatmapsetID: id, Mode: domain.ModeStandard, HitLength: 60, BPM: 180},
				{ID: id*10 + 1, BeatmapsetID: id, Mode: domain.ModeStandard, HitLength: 120, BPM: 200},
			},
		})
	}
	store.AddBeatmapset(domain.Beatmapset{ID: 30, ApprovedDate: approved(2023),
		Beatmaps: []domain.Beatmap{{ID: 300, BeatmapsetID: 30, Mode: domain.ModeStandard, HitLength: 60}, {ID: 301, BeatmapsetID: 30, Mode: domain.ModeStandard, HitLength: 80}}})
	store.AddBeatmapset(domain.Beatmapset{ID: 40, ApprovedDate: approved(2021),
		Beatmaps: []domain.Beatmap{{ID: 400, BeatmapsetID: 40, Mode: domain.ModeStandard, HitLength: 200}}})

	fx := &fixture{
		store:     store,
		events:    &recordingPublisher{},
		nominator: &nominator,
	}
	fx.grand = store.AddCategory(domain.Category{Year: 2023, Name: "Grand Award", Type: domain.CategoryTypeBeatmapsets,
		Mode: domain.ModeStandard, IsRequired: true, MaxNominations: 2})
	fx.expert = store.AddCategory(domain.Category{Year: 2023, Name: "Expert", Type: domain.CategoryTypeBeatmapsets,
		Mode: domain.ModeStandard, MaxNominations: 3, Filter: &domain.CategoryFilter{MinLength: f64(90)}})
	fx.users = store.AddCategory(domain.Category{Year: 2023, Name: "Mapper", Type: domain.CategoryTypeUsers,
		Mode: domain.ModeStandard, IsRequired: true, MaxNominations: 3})
	fx.taiko = store.AddCategory(domain.Category{Year: 2023, Name: "Taiko Grand Award", Type: domain.CategoryTypeBeatmapsets,
		Mode: domain.ModeTaiko, IsRequired: true, MaxNominations: 3})
	fx.old = store.AddCategory(domain.Category{Year: 2022, Name: "Old Grand Award", Type: domain.CategoryTypeBeatmapsets,
		Mode: domain.ModeStandard, IsRequired: true, MaxNominations: 3})

	fx.gate = NewPhaseGate(repos.AwardCycles, fixedNow)
	fx.svc = NewNominationService(fx.gate, NewEligibilityEvaluator(1), repos, fx.events, logger.NewNop())
	fx.svc.now = fixedNow
	return fx
}

func (fx *fixture) create(t *testing.T, categoryID, nomineeID int) (*domain.Nomination, *domain.Rejection, error) {
	t.Helper()
	return fx.svc.Create(context.Background(), fx.nominator, 2023,
		domain.CreateNominationRequest{CategoryID: categoryID, NomineeID: nomineeID})
}

func (fx *fixture) mustCreate(t *testing.T, categoryID, nomineeID int) *domain.Nomination {
	t.Helper()
	n, r, err := fx.create(t, categoryID, nomineeID)
	require.NoError(t, err)
	require.Nil(t, r, "unexpected rejection")
	require.NotNil(t, n)
	return n
}
