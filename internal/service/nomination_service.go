package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/internal/rules"
	apperrors "mca-api/pkg/errors"
	"mca-api/pkg/logger"
)

// NominationService runs the nominating pipeline: phase gate, eligibility,
// category rules and the store write
type NominationService struct {
	phases      *PhaseGate
	eligibility *EligibilityEvaluator
	repos       *repository.Repositories
	events      EventPublisher
	logger      *logger.Logger
	now         func() time.Time
}

func NewNominationService(
	phases *PhaseGate,
	eligibility *EligibilityEvaluator,
	repos *repository.Repositories,
	events EventPublisher,
	log *logger.Logger,
) *NominationService {
	return &NominationService{
		phases:      phases,
		eligibility: eligibility,
		repos:       repos,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

// List returns the user's nominations in year and every category of year
func (s *NominationService) List(ctx context.Context, user *domain.User, year int) (*domain.NominationList, error) {
	if err := s.phases.requireStarted(ctx, domain.PhaseNomination, year); err != nil {
		return nil, err
	}

	var (
		nominations []*domain.Nomination
		categories  []*domain.Category
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		nominations, err = s.repos.Nominations.ListByNominatorAndYear(ctx, user.ID, year)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		categories, err = s.repos.Categories.ListByYear(ctx, year)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, apperrors.NewInternalError("Failed to load nominations", err)
	}

	list := &domain.NominationList{
		Nominations: nonNil(nominations),
		Categories:  make([]domain.CategoryInfo, 0, len(categories)),
	}
	for _, c := range categories {
		list.Categories = append(list.Categories, c.Info())
	}
	return list, nil
}

// Search finds candidates for one category. A locked category is a rejection.
func (s *NominationService) Search(ctx context.Context, user *domain.User, year int, req domain.SearchRequest) (*domain.SearchResult, *domain.Rejection, error) {
	if err := s.phases.requireStarted(ctx, domain.PhaseNomination, year); err != nil {
		return nil, nil, err
	}

	category, err := s.categoryInYear(ctx, req.CategoryID, year)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.repos.Nominations.ListByNominatorAndYear(ctx, user.ID, category.Year)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("Failed to load nominations", err)
	}
	if !rules.CategoryRequirementCheck(existing, category) {
		return nil, domain.Reject(domain.ReasonGrandAwardRequired, domain.MsgGrandAwardRequired), nil
	}

	found, err := s.repos.Search.Search(ctx, category, req)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("Failed to search candidates", err)
	}
	if found == nil {
		found = []domain.Candidate{}
	}

	return &domain.SearchResult{List: found, Nominations: nonNil(existing)}, nil, nil
}

// Create nominates a candidate. The quota, duplicate and prerequisite checks
// and the insert run under the nominator lock.
func (s *NominationService) Create(ctx context.Context, user *domain.User, year int, req domain.CreateNominationRequest) (*domain.Nomination, *domain.Rejection, error) {
	if err := s.phases.requirePhase(ctx, domain.PhaseNomination, year); err != nil {
		return nil, nil, err
	}
	if !s.eligibility.IsEligible(user, year) {
		return nil, domain.Reject(domain.ReasonNotEligible, domain.MsgNotEligible), nil
	}

	category, err := s.categoryInYear(ctx, req.CategoryID, year)
	if err != nil {
		return nil, nil, err
	}
	if !s.eligibility.IsEligibleFor(user, category.Mode, year) {
		return nil, domain.Reject(domain.ReasonInactiveForMode, domain.MsgInactiveForMode), nil
	}

	var (
		created   *domain.Nomination
		rejection *domain.Rejection
	)
	err = s.repos.Tx.WithNominatorLock(ctx, user.ID, func(ctx context.Context, tx repository.TxRepositories) error {
		existing, err := tx.Nominations.ListByNominatorAndYear(ctx, user.ID, year)
		if err != nil {
			return err
		}
		if !rules.CategoryRequirementCheck(existing, category) {
			rejection = domain.Reject(domain.ReasonGrandAwardRequired, domain.MsgGrandAwardRequired)
			return nil
		}

		inCategory := rules.InCategory(existing, category.ID)
		if rejection = rules.ValidateQuota(inCategory, category.MaxNominations); rejection != nil {
			return nil
		}

		candidate, err := loadCandidate(ctx, tx.Candidates, category.Type, req.NomineeID)
		if err != nil {
			return err
		}
		if rejection = rules.ValidateCandidate(inCategory, category, candidate); rejection != nil {
			return nil
		}

		n := &domain.Nomination{
			NominatorID: user.ID,
			Category:    category,
			Candidate:   candidate,
			IsValid:     true,
		}
		if err := tx.Nominations.Create(ctx, n); err != nil {
			return err
		}
		created = n
		return nil
	})

	if errors.Is(err, repository.ErrDuplicateNomination) {
		msg := domain.MsgDuplicateBeatmapset
		if category.Type == domain.CategoryTypeUsers {
			msg = domain.MsgDuplicateUser
		}
		return nil, domain.Reject(domain.ReasonDuplicateCandidate, msg), nil
	}
	if err != nil {
		return nil, nil, asServiceError(err, "Failed to create nomination")
	}
	if rejection != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id":     user.ID,
			"category_id": category.ID,
			"reason":      string(rejection.Reason),
		}).Debug("Nomination rejected")
		return nil, rejection, nil
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       user.ID,
		"category_id":   category.ID,
		"nomination_id": created.ID,
	}).Info("Nomination created")

	s.publish(ctx, domain.NominationEvent{
		Type:          domain.NominationCreated,
		NominationID:  created.ID,
		NominatorID:   user.ID,
		CategoryID:    category.ID,
		Year:          year,
		CandidateType: created.Candidate.CandidateType(),
		CandidateID:   created.Candidate.CandidateID(),
	})
	return created, nil, nil
}

// Delete withdraws one of the user's nominations in year
func (s *NominationService) Delete(ctx context.Context, user *domain.User, year int, nominationID int) (*domain.Rejection, error) {
	if err := s.phases.requirePhase(ctx, domain.PhaseNomination, year); err != nil {
		return nil, err
	}
	if !s.eligibility.IsEligible(user, year) {
		return domain.Reject(domain.ReasonNotEligible, domain.MsgNotEligible), nil
	}

	var (
		target    *domain.Nomination
		rejection *domain.Rejection
	)
	err := s.repos.Tx.WithNominatorLock(ctx, user.ID, func(ctx context.Context, tx repository.TxRepositories) error {
		existing, err := tx.Nominations.ListByNominatorAndYear(ctx, user.ID, year)
		if err != nil {
			return err
		}

		target = rules.FindNomination(existing, nominationID)
		if target == nil {
			return apperrors.NewNotFoundError(domain.MsgNominationNotFound)
		}
		if rejection = rules.ValidateRemoval(existing, target); rejection != nil {
			return nil
		}

		deleted, err := tx.Nominations.Delete(ctx, target.ID)
		if err != nil {
			return err
		}
		if !deleted {
			// invalidated by staff after it was read
			rejection = domain.Reject(domain.ReasonAlreadyReviewed, domain.MsgAlreadyReviewed)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "Failed to delete nomination")
	}
	if rejection != nil {
		return rejection, nil
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":       user.ID,
		"nomination_id": target.ID,
	}).Info("Nomination deleted")

	event := domain.NominationEvent{
		Type:         domain.NominationDeleted,
		NominationID: target.ID,
		NominatorID:  user.ID,
		Year:         year,
	}
	if target.Category != nil {
		event.CategoryID = target.Category.ID
	}
	if target.Candidate != nil {
		event.CandidateType = target.Candidate.CandidateType()
		event.CandidateID = target.Candidate.CandidateID()
	}
	s.publish(ctx, event)
	return nil, nil
}

// categoryInYear loads a category that must belong to year
func (s *NominationService) categoryInYear(ctx context.Context, id, year int) (*domain.Category, error) {
	category, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load category", err)
	}
	if category == nil || category.Year != year {
		return nil, apperrors.NewNotFoundError("Category not found")
	}
	return category, nil
}

// loadCandidate fetches the nominee in the shape the category expects
func loadCandidate(ctx context.Context, repo repository.CandidateRepository, typ domain.CategoryType, id int) (domain.Candidate, error) {
	switch typ {
	case domain.CategoryTypeBeatmapsets:
		set, err := repo.GetBeatmapset(ctx, id)
		if err != nil {
			return nil, err
		}
		if set == nil {
			return nil, apperrors.NewNotFoundError("Beatmapset not found")
		}
		return set, nil
	case domain.CategoryTypeUsers:
		u, err := repo.GetUserCandidate(ctx, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return u, nil
	default:
		return nil, fmt.Errorf("unsupported category type %q", typ)
	}
}

func (s *NominationService) publish(ctx context.Context, event domain.NominationEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.events.PublishNominationEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"event":         string(event.Type),
			"nomination_id": event.NominationID,
		}).Warn("Failed to publish nomination event")
	}
}

// asServiceError keeps AppErrors raised inside a transaction and wraps the rest
func asServiceError(err error, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewInternalError(message, err)
}

func nonNil(n []*domain.Nomination) []*domain.Nomination {
	if n == nil {
		return []*domain.Nomination{}
	}
	return n
}
