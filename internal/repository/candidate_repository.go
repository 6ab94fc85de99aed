package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"mca-api/internal/domain"
)

type PgCandidateRepository struct {
	db querier
}

func NewCandidateRepository(db querier) *PgCandidateRepository {
	return &PgCandidateRepository{db: db}
}

// GetBeatmapset gets a beatmapset with its beatmaps
func (r *PgCandidateRepository) GetBeatmapset(ctx context.Context, id int) (*domain.Beatmapset, error) {
	var set domain.Beatmapset
	err := r.db.QueryRow(ctx,
		`SELECT id, artist, title, creator_name, approved_date FROM beatmapsets WHERE id = $1`, id,
	).Scan(&set.ID, &set.Artist, &set.Title, &set.CreatorName, &set.ApprovedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get beatmapset: %w", err)
	}

	if err := r.attachBeatmaps(ctx, []*domain.Beatmapset{&set}); err != nil {
		return nil, err
	}
	return &set, nil
}

// attachBeatmaps loads the beatmaps of every set in one query
func (r *PgCandidateRepository) attachBeatmaps(ctx context.Context, sets []*domain.Beatmapset) error {
	if len(sets) == 0 {
		return nil
	}
	ids := make([]int, len(sets))
	byID := make(map[int]*domain.Beatmapset, len(sets))
	for i, s := range sets {
		ids[i] = s.ID
		byID[s.ID] = s
		s.Beatmaps = []domain.Beatmap{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, beatmapset_id, difficulty_name, mode, hit_length, bpm, star_rating, circle_size
		FROM beatmaps WHERE beatmapset_id = ANY($1) ORDER BY beatmapset_id, star_rating`, ids)
	if err != nil {
		return fmt.Errorf("failed to load beatmaps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b    domain.Beatmap
			mode string
		)
		if err := rows.Scan(&b.ID, &b.BeatmapsetID, &b.DifficultyName, &mode,
			&b.HitLength, &b.BPM, &b.StarRating, &b.CircleSize); err != nil {
			return fmt.Errorf("failed to scan beatmap: %w", err)
		}
		b.Mode = domain.Mode(mode)
		if s, ok := byID[b.BeatmapsetID]; ok {
			s.Beatmaps = append(s.Beatmaps, b)
		}
	}
	return rows.Err()
}

// GetUserCandidate gets a user as a nominee
func (r *PgCandidateRepository) GetUserCandidate(ctx context.Context, id int) (*domain.UserCandidate, error) {
	var u domain.UserCandidate
	err := r.db.QueryRow(ctx,
		`SELECT id, osu_id, username, avatar_url FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.OsuID, &u.Username, &u.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user candidate: %w", err)
	}
	return &u, nil
}

// Search returns one page of candidates a category accepts
func (r *PgCandidateRepository) Search(ctx context.Context, category *domain.Category, req domain.SearchRequest) ([]domain.Candidate, error) {
	switch category.Type {
	case domain.CategoryTypeBeatmapsets:
		return r.searchBeatmapsets(ctx, category, req)
	case domain.CategoryTypeUsers:
		return r.searchUsers(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported category type %q", category.Type)
	}
}

// queryBuilder numbers positional arguments as conditions are appended
type queryBuilder struct {
	where []string
	args  []any
}

func (q *queryBuilder) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *queryBuilder) and(cond string) {
	q.where = append(q.where, cond)
}

func (q *queryBuilder) clause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

var beatmapsetOrder = map[domain.SearchOrder]string{
	domain.SearchOrderDate:     "s.approved_date DESC, s.id",
	domain.SearchOrderArtist:   "LOWER(s.artist), s.id",
	domain.SearchOrderTitle:    "LOWER(s.title), s.id",
	domain.SearchOrderUsername: "LOWER(s.creator_name), s.id",
}

func (r *PgCandidateRepository) searchBeatmapsets(ctx context.Context, category *domain.Category, req domain.SearchRequest) ([]domain.Candidate, error) {
	q := &queryBuilder{}

	start := time.Date(category.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	q.and("s.approved_date >= " + q.arg(start))
	q.and("s.approved_date < " + q.arg(start.AddDate(1, 0, 0)))

	if category.Mode != domain.ModeStoryboard {
		q.and("EXISTS (SELECT 1 FROM beatmaps b WHERE b.beatmapset_id = s.id AND b.mode = " + q.arg(string(category.Mode)) + ")")
	}

	if f := category.Filter; f != nil {
		bounds := []struct {
			limit *float64
			cond  string
		}{
			{f.MinLength, "b.hit_length >= "},
			{f.MaxLength, "b.hit_length <= "},
			{f.MinBPM, "b.bpm >= "},
			{f.MaxBPM, "b.bpm <= "},
			{f.MinSR, "b.star_rating >= "},
			{f.MaxSR, "b.star_rating <= "},
			{f.MinCS, "b.circle_size >= "},
			{f.MaxCS, "b.circle_size <= "},
		}
		for _, bound := range bounds {
			if bound.limit == nil {
				continue
			}
			q.and("EXISTS (SELECT 1 FROM beatmaps b WHERE b.beatmapset_id = s.id AND " + bound.cond + q.arg(*bound.limit) + ")")
		}
	}

	if text := strings.TrimSpace(req.Text); text != "" {
		p := q.arg("%" + escapeLike(text) + "%")
		q.and(fmt.Sprintf("(s.artist ILIKE %[1]s OR s.title ILIKE %[1]s OR s.creator_name ILIKE %[1]s)", p))
	}

	order, ok := beatmapsetOrder[req.Order]
	if !ok {
		order = beatmapsetOrder[domain.SearchOrderDate]
	}

	query := `SELECT s.id, s.artist, s.title, s.creator_name, s.approved_date FROM beatmapsets s` +
		q.clause() + ` ORDER BY ` + order +
		` LIMIT ` + q.arg(domain.SearchPageSize) + ` OFFSET ` + q.arg(max(req.Skip, 0))

	rows, err := r.db.Query(ctx, query, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search beatmapsets: %w", err)
	}
	defer rows.Close()

	var sets []*domain.Beatmapset
	for rows.Next() {
		var s domain.Beatmapset
		if err := rows.Scan(&s.ID, &s.Artist, &s.Title, &s.CreatorName, &s.ApprovedDate); err != nil {
			return nil, fmt.Errorf("failed to scan beatmapset: %w", err)
		}
		sets = append(sets, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate beatmapsets: %w", err)
	}
	rows.Close()

	if err := r.attachBeatmaps(ctx, sets); err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, len(sets))
	for i, s := range sets {
		out[i] = s
	}
	return out, nil
}

var userOrder = map[domain.SearchOrder]string{
	domain.SearchOrderDate:     "u.registered_at, u.id",
	domain.SearchOrderUsername: "LOWER(u.username), u.id",
}

func (r *PgCandidateRepository) searchUsers(ctx context.Context, req domain.SearchRequest) ([]domain.Candidate, error) {
	q := &queryBuilder{}
	q.and("u.restricted = FALSE")

	if text := strings.TrimSpace(req.Text); text != "" {
		q.and("u.username ILIKE " + q.arg("%"+escapeLike(text)+"%"))
	}

	order, ok := userOrder[req.Order]
	if !ok {
		order = userOrder[domain.SearchOrderUsername]
	}

	query := `SELECT u.id, u.osu_id, u.username, u.avatar_url FROM users u` +
		q.clause() + ` ORDER BY ` + order +
		` LIMIT ` + q.arg(domain.SearchPageSize) + ` OFFSET ` + q.arg(max(req.Skip, 0))

	rows, err := r.db.Query(ctx, query, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var u domain.UserCandidate
		if err := rows.Scan(&u.ID, &u.OsuID, &u.Username, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan user candidate: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user candidates: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
