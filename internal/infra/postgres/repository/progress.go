package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
)

// ProgressRepository provides access to user progress data in the database.
type ProgressRepository struct {
	db postgres.DBTX
}

// NewProgressRepository creates a new ProgressRepository with the provided database handle.
func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ListByUser returns the ledger of a user with the joined boulder normalized.
// Rows whose boulder cannot be resolved are returned with a nil Boulder.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]entities.ProgressEntry, error) {
	query := `
		SELECT up.id, up.user_id, up.boulder_id, up.boulder_count, up.completed_at, to_jsonb(b) AS boulder
		FROM user_progress up
		LEFT JOIN boulders b ON b.id = up.boulder_id
		WHERE up.user_id = $1
		ORDER BY up.completed_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.ProgressEntry, 0)
	for rows.Next() {
		var e entities.ProgressEntry
		var rawBoulder []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.BoulderID, &e.Count, &e.CompletedAt, &rawBoulder); err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		e.Boulder = entities.DecodeBoulderRef(rawBoulder)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	return entries, nil
}

// Upsert sets the count of a (user, boulder) pair through upsert_boulder_progress.
// A count below one deletes the pair; in that case the returned entry is nil.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, boulderID string, count int) (*entities.ProgressEntry, error) {
	query := `
		SELECT id, user_id, boulder_id, boulder_count, completed_at
		FROM upsert_boulder_progress($1, $2, $3)
	`

	var e entities.ProgressEntry
	err := r.db.QueryRow(ctx, query, userID, boulderID, count).Scan(
		&e.ID,
		&e.UserID,
		&e.BoulderID,
		&e.Count,
		&e.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	return &e, nil
}

// Count returns the stored count of a pair, zero when absent.
func (r *ProgressRepository) Count(ctx context.Context, userID, boulderID string) (int, error) {
	query := `
		SELECT boulder_count
		FROM user_progress
		WHERE user_id = $1 AND boulder_id = $2
	`

	var count int
	err := r.db.QueryRow(ctx, query, userID, boulderID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get progress count: %w", err)
	}

	return count, nil
}

// LockPair serializes writers of a (user, boulder) pair until the surrounding
// transaction ends. It also covers pairs that have no row yet.
func (r *ProgressRepository) LockPair(ctx context.Context, userID, boulderID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`

	if _, err := r.db.Exec(ctx, query, userID, boulderID); err != nil {
		return fmt.Errorf("lock progress pair: %w", err)
	}

	return nil
}
