// Package memory is an in-process implementation of the repository interfaces,
// used for local development and by the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mca-api/internal/domain"
	"mca-api/internal/repository"
	"mca-api/internal/rules"
)

type nominationRow struct {
	id            int
	nominatorID   int
	categoryID    int
	candidateType domain.CategoryType
	candidateID   int
	isValid       bool
	reviewerID    *int
	createdAt     time.Time
}

// Store keeps every entity in maps guarded by one RWMutex. Nominator locks are
// separate mutexes so a locked section can still read and write the maps.
type Store struct {
	mu          sync.RWMutex
	cycles      map[int]domain.AwardCycle
	categories  map[int]domain.Category
	users       map[int]domain.User
	beatmapsets map[int]domain.Beatmapset
	nominations map[int]nominationRow
	nextID      int

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		cycles:      make(map[int]domain.AwardCycle),
		categories:  make(map[int]domain.Category),
		users:       make(map[int]domain.User),
		beatmapsets: make(map[int]domain.Beatmapset),
		nominations: make(map[int]nominationRow),
		locks:       make(map[int]*sync.Mutex),
		now:         time.Now,
	}
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		AwardCycles: s,
		Categories:  (*categoryRepo)(s),
		Users:       (*userRepo)(s),
		Candidates:  (*candidateRepo)(s),
		Search:      (*candidateRepo)(s),
		Nominations: (*nominationRepo)(s),
		Tx:          s,
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// GetByYear implements repository.AwardCycleRepository
func (s *Store) GetByYear(_ context.Context, year int) (*domain.AwardCycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cycles[year]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Upsert implements repository.AwardCycleRepository
func (s *Store) Upsert(_ context.Context, cycle *domain.AwardCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.cycles[cycle.Year]; ok && current.Phase.Index() > cycle.Phase.Index() {
		return repository.ErrPhaseRegression
	}
	s.cycles[cycle.Year] = *cycle
	return nil
}

// WithNominatorLock implements repository.Transactor. Writes made by fn are
// not undone when it fails.
func (s *Store) WithNominatorLock(ctx context.Context, nominatorID int, fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	s.locksMu.Lock()
	l, ok := s.locks[nominatorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[nominatorID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, repository.TxRepositories{
		Nominations: (*nominationRepo)(s),
		Candidates:  (*candidateRepo)(s),
	})
}

type categoryRepo Store

func (r *categoryRepo) GetByID(_ context.Context, id int) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepo) ListByYear(_ context.Context, year int) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Category
	for _, c := range r.categories {
		if c.Year == year {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsRequired != out[j].IsRequired {
			return out[i].IsRequired
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = (*Store)(r).id()
	r.categories[c.ID] = *c
	return nil
}

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.Activity = append([]domain.ModeActivity(nil), u.Activity...)
	return &u, nil
}

func (r *userRepo) GetByOsuID(ctx context.Context, osuID int) (*domain.User, error) {
	r.mu.RLock()
	var id int
	for _, u := range r.users {
		if u.OsuID == osuID {
			id = u.ID
			break
		}
	}
	r.mu.RUnlock()
	if id == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) Upsert(ctx context.Context, p *domain.OsuProfile) (*domain.User, error) {
	existing, _ := r.GetByOsuID(ctx, p.ID)

	r.mu.Lock()
	var u domain.User
	if existing != nil {
		u = r.users[existing.ID]
	} else {
		u = domain.User{ID: (*Store)(r).id(), OsuID: p.ID, RegisteredAt: p.JoinDate}
	}
	u.Username = p.Username
	u.AvatarURL = p.AvatarURL
	u.Restricted = p.IsRestricted
	r.users[u.ID] = u
	r.mu.Unlock()

	return r.GetByID(ctx, u.ID)
}

func (r *userRepo) AddActivity(_ context.Context, userID int, a domain.ModeActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	for i := range u.Activity {
		if u.Activity[i].Mode == a.Mode && u.Activity[i].Year == a.Year {
			u.Activity[i].Count += a.Count
			r.users[userID] = u
			return nil
		}
	}
	u.Activity = append(u.Activity, a)
	r.users[userID] = u
	return nil
}

type candidateRepo Store

func (r *candidateRepo) GetBeatmapset(_ context.Context, id int) (*domain.Beatmapset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.beatmapsets[id]
	if !ok {
		return nil, nil
	}
	s.Beatmaps = append([]domain.Beatmap(nil), s.Beatmaps...)
	return &s, nil
}

func (r *candidateRepo) GetUserCandidate(_ context.Context, id int) (*domain.UserCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &domain.UserCandidate{ID: u.ID, OsuID: u.OsuID, Username: u.Username, AvatarURL: u.AvatarURL}, nil
}

// Search filters in memory with the same rules the create path applies
func (r *candidateRepo) Search(_ context.Context, category *domain.Category, req domain.SearchRequest) ([]domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text := strings.ToLower(strings.TrimSpace(req.Text))
	var out []domain.Candidate

	switch category.Type {
	case domain.CategoryTypeBeatmapsets:
		var sets []*domain.Beatmapset
		for _, s := range r.beatmapsets {
			s := s
			if s.ApprovedYear() != category.Year || !hasMode(&s, category.Mode) {
				continue
			}
			if rules.ValidateAttributeFilter(&s, category.Filter) != nil {
				continue
			}
			if text != "" && !containsAny(text, s.Artist, s.Title, s.CreatorName) {
				continue
			}
			sets = append(sets, &s)
		}
		sortBeatmapsets(sets, req.Order)
		for _, s := range sets {
			out = append(out, s)
		}
	case domain.CategoryTypeUsers:
		var users []*domain.UserCandidate
		for _, u := range r.users {
			if u.Restricted || (text != "" && !containsAny(text, u.Username)) {
				continue
			}
			users = append(users, &domain.UserCandidate{ID: u.ID, OsuID: u.OsuID, Username: u.Username, AvatarURL: u.AvatarURL})
		}
		sort.Slice(users, func(i, j int) bool {
			return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
		})
		for _, u := range users {
			out = append(out, u)
		}
	}

	return page(out, req.Skip), nil
}

func page(list []domain.Candidate, skip int) []domain.Candidate {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(list) {
		return []domain.Candidate{}
	}
	end := min(skip+domain.SearchPageSize, len(list))
	return list[skip:end]
}

func hasMode(s *domain.Beatmapset, mode domain.Mode) bool {
	if mode == domain.ModeStoryboard {
		return true
	}
	for _, b := range s.Beatmaps {
		if b.Mode == mode {
			return true
		}
	}
	return false
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortBeatmapsets(sets []*domain.Beatmapset, order domain.SearchOrder) {
	key := func(s *domain.Beatmapset) string {
		switch order {
		case domain.SearchOrderArtist:
			return strings.ToLower(s.Artist)
		case domain.SearchOrderTitle:
			return strings.ToLower(s.Title)
		case domain.SearchOrderUsername:
			return strings.ToLower(s.CreatorName)
		}
		return ""
	}
	sort.SliceStable(sets, func(i, j int) bool {
		if order == domain.SearchOrderDate || key(sets[i]) == key(sets[j]) {
			if !sets[i].ApprovedDate.Equal(sets[j].ApprovedDate) {
				return sets[i].ApprovedDate.After(sets[j].ApprovedDate)
			}
			return sets[i].ID < sets[j].ID
		}
		return key(sets[i]) < key(sets[j])
	})
}

type nominationRepo Store

func (r *nominationRepo) ListByNominatorAndYear(_ context.Context, nominatorID, year int) ([]*domain.Nomination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Nomination
	for _, row := range r.nominations {
		if row.nominatorID != nominatorID {
			continue
		}
		cat, ok := r.categories[row.categoryID]
		if !ok || cat.Year != year {
			continue
		}
		out = append(out, (*Store)(r).hydrate(row, cat))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// hydrate builds a nomination from its row; the caller holds the read lock
func (s *Store) hydrate(row nominationRow, cat domain.Category) *domain.Nomination {
	n := &domain.Nomination{
		ID:          row.id,
		NominatorID: row.nominatorID,
		Category:    &cat,
		IsValid:     row.isValid,
		ReviewerID:  row.reviewerID,
		CreatedAt:   row.createdAt,
	}
	switch row.candidateType {
	case domain.CategoryTypeBeatmapsets:
		set := s.beatmapsets[row.candidateID]
		set.Beatmaps = nil
		n.Candidate = &set
	case domain.CategoryTypeUsers:
		u := s.users[row.candidateID]
		n.Candidate = &domain.UserCandidate{ID: u.ID, OsuID: u.OsuID, Username: u.Username, AvatarURL: u.AvatarURL}
	}
	return n
}

func (r *nominationRepo) Create(_ context.Context, n *domain.Nomination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.nominations {
		if row.nominatorID == n.NominatorID && row.categoryID == n.Category.ID &&
			row.candidateType == n.Candidate.CandidateType() && row.candidateID == n.Candidate.CandidateID() {
			return repository.ErrDuplicateNomination
		}
	}

	row := nominationRow{
		id:            (*Store)(r).id(),
		nominatorID:   n.NominatorID,
		categoryID:    n.Category.ID,
		candidateType: n.Candidate.CandidateType(),
		candidateID:   n.Candidate.CandidateID(),
		isValid:       n.IsValid,
		createdAt:     r.now().UTC(),
	}
	r.nominations[row.id] = row
	n.ID = row.id
	n.CreatedAt = row.createdAt
	return nil
}

func (r *nominationRepo) Delete(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.nominations[id]
	if !ok || !row.isValid {
		return false, nil
	}
	delete(r.nominations, id)
	return true, nil
}
