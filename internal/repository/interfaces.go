package repository

import (
	"context"
	"errors"

	"mca-api/internal/domain"
)

// ErrDuplicateNomination is returned by NominationRepository.Create when the
// nominator already picked the same candidate in the category
var ErrDuplicateNomination = errors.New("duplicate nomination")

// ErrPhaseRegression is returned by AwardCycleRepository.Upsert when the new
// phase comes before the stored one
var ErrPhaseRegression = errors.New("award cycle phase cannot move backwards")

// AwardCycleRepository defines the interface for award cycle data operations
type AwardCycleRepository interface {
	// GetByYear retrieves the cycle of a year, nil if there is none
	GetByYear(ctx context.Context, year int) (*domain.AwardCycle, error)

	// Upsert creates the cycle or moves it forward to the given phase
	Upsert(ctx context.Context, cycle *domain.AwardCycle) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	// GetByID retrieves a category, nil if it does not exist
	GetByID(ctx context.Context, id int) (*domain.Category, error)

	// ListByYear retrieves every category of a cycle year
	ListByYear(ctx context.Context, year int) ([]*domain.Category, error)

	// Create creates a new category and sets its ID
	Create(ctx context.Context, category *domain.Category) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user with their activity history
	GetByID(ctx context.Context, id int) (*domain.User, error)

	// GetByOsuID retrieves a user by osu! account id
	GetByOsuID(ctx context.Context, osuID int) (*domain.User, error)

	// Upsert creates or refreshes the user behind an osu! profile
	Upsert(ctx context.Context, profile *domain.OsuProfile) (*domain.User, error)

	// AddActivity records activity for a user, mode and year
	AddActivity(ctx context.Context, userID int, activity domain.ModeActivity) error
}

// CandidateRepository loads nominees by id
type CandidateRepository interface {
	// GetBeatmapset retrieves a beatmapset with its beatmaps, nil if absent
	GetBeatmapset(ctx context.Context, id int) (*domain.Beatmapset, error)

	// GetUserCandidate retrieves a user as a nominee, nil if absent
	GetUserCandidate(ctx context.Context, id int) (*domain.UserCandidate, error)
}

// CandidateSearcher finds nominees eligible for a category
type CandidateSearcher interface {
	Search(ctx context.Context, category *domain.Category, req domain.SearchRequest) ([]domain.Candidate, error)
}

// NominationRepository defines the interface for nomination data operations.
// Every read is scoped to one nominator and one cycle year.
type NominationRepository interface {
	// ListByNominatorAndYear retrieves the nominations of a user in categories of year
	ListByNominatorAndYear(ctx context.Context, nominatorID, year int) ([]*domain.Nomination, error)

	// Create persists a nomination and sets its ID and CreatedAt
	Create(ctx context.Context, nomination *domain.Nomination) error

	// Delete removes a nomination that is still valid. It reports false when
	// no such row exists.
	Delete(ctx context.Context, id int) (bool, error)
}

// TxRepositories are the repositories bound to a running transaction
type TxRepositories struct {
	Nominations NominationRepository
	Candidates  CandidateRepository
}

// Transactor runs fn in a single transaction holding an exclusive lock on the
// nominator. Returning an error from fn rolls the transaction back.
type Transactor interface {
	WithNominatorLock(ctx context.Context, nominatorID int, fn func(ctx context.Context, tx TxRepositories) error) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	AwardCycles AwardCycleRepository
	Categories  CategoryRepository
	Users       UserRepository
	Candidates  CandidateRepository
	Search      CandidateSearcher
	Nominations NominationRepository
	Tx          Transactor
}
