package memory

import (
	"mca-api/internal/domain"
)

// AddUser stores u, assigning an ID when it has none
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	s.users[u.ID] = u
	return u
}

// AddBeatmapset stores a beatmapset under its own ID
func (s *Store) AddBeatmapset(set domain.Beatmapset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beatmapsets[set.ID] = set
}

// AddCategory stores c, assigning an ID when it has none
func (s *Store) AddCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	s.categories[c.ID] = c
	return c
}

// Review records a staff decision on a nomination
func (s *Store) Review(nominationID, reviewerID int, valid bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.nominations[nominationID]
	if !ok {
		return false
	}
	row.isValid = valid
	row.reviewerID = &reviewerID
	s.nominations[nominationID] = row
	return true
}

// NominationCount returns the number of stored nominations
func (s *Store) NominationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nominations)
}
