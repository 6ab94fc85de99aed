package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mca-api/internal/domain"
)

type PgUserRepository struct {
	db querier
}

func NewUserRepository(db querier) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, osu_id, username, avatar_url, registered_at, restricted`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.OsuID, &u.Username, &u.AvatarURL, &u.RegisteredAt, &u.Restricted)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID gets a user and their activity history
func (r *PgUserRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := r.loadActivity(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByOsuID gets a user by osu! account id
func (r *PgUserRepository) GetByOsuID(ctx context.Context, osuID int) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE osu_id = $1`, osuID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by osu id: %w", err)
	}
	if err := r.loadActivity(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PgUserRepository) loadActivity(ctx context.Context, user *domain.User) error {
	rows, err := r.db.Query(ctx,
		`SELECT mode, year, count FROM user_activity WHERE user_id = $1 ORDER BY year, mode`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load user activity: %w", err)
	}
	defer rows.Close()

	user.Activity = user.Activity[:0]
	for rows.Next() {
		var (
			a    domain.ModeActivity
			mode string
		)
		if err := rows.Scan(&mode, &a.Year, &a.Count); err != nil {
			return fmt.Errorf("failed to scan user activity: %w", err)
		}
		a.Mode = domain.Mode(mode)
		user.Activity = append(user.Activity, a)
	}
	return rows.Err()
}

// Upsert creates the user behind an osu! profile or refreshes its profile fields
func (r *PgUserRepository) Upsert(ctx context.Context, profile *domain.OsuProfile) (*domain.User, error) {
	query := `
		INSERT INTO users (osu_id, username, avatar_url, registered_at, restricted)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (osu_id) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			restricted = EXCLUDED.restricted,
			updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		profile.ID, profile.Username, profile.AvatarURL, profile.JoinDate, profile.IsRestricted))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if err := r.loadActivity(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddActivity adds to the activity count of a user for a mode and year
func (r *PgUserRepository) AddActivity(ctx context.Context, userID int, a domain.ModeActivity) error {
	query := `
		INSERT INTO user_activity (user_id, mode, year, count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, mode, year) DO UPDATE SET count = user_activity.count + EXCLUDED.count
	`
	if _, err := r.db.Exec(ctx, query, userID, string(a.Mode), a.Year, a.Count); err != nil {
		return fmt.Errorf("failed to add user activity: %w", err)
	}
	return nil
}
