package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mca-api/pkg/database"
)

// nominatorLockSpace is the first key of the two-key advisory lock, keeping
// nominator locks apart from any other advisory lock user
const nominatorLockSpace int32 = 0x4d4341

const nominatorLockQuery = `SELECT pg_advisory_xact_lock($1::int4, $2::int4)`

type PgTransactor struct {
	db *database.PostgresDB
}

func NewTransactor(db *database.PostgresDB) *PgTransactor {
	return &PgTransactor{db: db}
}

// nominatorLockArgs are the int4 key pair of a nominator's advisory lock
func nominatorLockArgs(nominatorID int) []any {
	return []any{nominatorLockSpace, int32(nominatorID)}
}

// WithNominatorLock serialises every create and delete of one nominator with a
// transaction-scoped advisory lock. The lock is released on commit or rollback.
func (t *PgTransactor) WithNominatorLock(ctx context.Context, nominatorID int, fn func(ctx context.Context, tx TxRepositories) error) error {
	return pgx.BeginFunc(ctx, t.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, nominatorLockQuery, nominatorLockArgs(nominatorID)...); err != nil {
			return fmt.Errorf("failed to acquire nominator lock: %w", err)
		}

		return fn(ctx, TxRepositories{
			Nominations: NewNominationRepository(tx),
			Candidates:  NewCandidateRepository(tx),
		})
	})
}
