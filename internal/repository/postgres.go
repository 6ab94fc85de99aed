package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mca-api/pkg/database"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepositories wires every repository against one connection pool
func NewPostgresRepositories(db *database.PostgresDB) *Repositories {
	candidates := NewCandidateRepository(db.Pool)
	return &Repositories{
		AwardCycles: NewAwardCycleRepository(db.Pool),
		Categories:  NewCategoryRepository(db.Pool),
		Users:       NewUserRepository(db.Pool),
		Candidates:  candidates,
		Search:      candidates,
		Nominations: NewNominationRepository(db.Pool),
		Tx:          NewTransactor(db),
	}
}
