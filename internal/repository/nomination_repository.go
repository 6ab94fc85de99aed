package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"mca-api/internal/domain"
)

type PgNominationRepository struct {
	db querier
}

func NewNominationRepository(db querier) *PgNominationRepository {
	return &PgNominationRepository{db: db}
}

// ListByNominatorAndYear lists a user's nominations in the categories of one cycle
func (r *PgNominationRepository) ListByNominatorAndYear(ctx context.Context, nominatorID, year int) ([]*domain.Nomination, error) {
	query := `
		SELECT n.id, n.nominator_id, n.is_valid, n.reviewer_id, n.created_at,
		       ` + categoryColumns + `,
		       s.id, s.artist, s.title, s.creator_name, s.approved_date,
		       u.id, u.osu_id, u.username, u.avatar_url
		FROM nominations n
		JOIN categories c ON c.id = n.category_id
		LEFT JOIN beatmapsets s ON s.id = n.beatmapset_id
		LEFT JOIN users u ON u.id = n.nominee_id
		WHERE n.nominator_id = $1 AND c.year = $2
		ORDER BY n.id
	`

	rows, err := r.db.Query(ctx, query, nominatorID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominations: %w", err)
	}
	defer rows.Close()

	var nominations []*domain.Nomination
	for rows.Next() {
		var (
			n   domain.Nomination
			cat categoryDest

			setID                  *int
			artist, title, creator *string
			approved               *time.Time
			userID, osuID          *int
			username, avatar       *string
		)
		targets := []any{&n.ID, &n.NominatorID, &n.IsValid, &n.ReviewerID, &n.CreatedAt}
		targets = append(targets, cat.targets()...)
		targets = append(targets, &setID, &artist, &title, &creator, &approved,
			&userID, &osuID, &username, &avatar)

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan nomination: %w", err)
		}

		n.Category = cat.result()
		switch {
		case setID != nil:
			n.Candidate = &domain.Beatmapset{
				ID: *setID, Artist: deref(artist), Title: deref(title),
				CreatorName: deref(creator), ApprovedDate: *approved,
			}
		case userID != nil:
			n.Candidate = &domain.UserCandidate{
				ID: *userID, OsuID: *osuID, Username: deref(username), AvatarURL: deref(avatar),
			}
		}
		nominations = append(nominations, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nominations: %w", err)
	}
	return nominations, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create inserts a nomination. A unique violation on the candidate indexes
// surfaces as ErrDuplicateNomination.
func (r *PgNominationRepository) Create(ctx context.Context, n *domain.Nomination) error {
	var setID, nomineeID *int
	switch c := n.Candidate.(type) {
	case *domain.Beatmapset:
		setID = &c.ID
	case *domain.UserCandidate:
		nomineeID = &c.ID
	default:
		return fmt.Errorf("failed to create nomination: unsupported candidate %T", n.Candidate)
	}

	query := `
		INSERT INTO nominations (nominator_id, category_id, beatmapset_id, nominee_id, is_valid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, n.NominatorID, n.Category.ID, setID, nomineeID, n.IsValid).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateNomination
		}
		return fmt.Errorf("failed to create nomination: %w", err)
	}
	return nil
}

// Delete removes a nomination staff has not invalidated
func (r *PgNominationRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM nominations WHERE id = $1 AND is_valid = TRUE`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete nomination: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
