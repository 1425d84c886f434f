package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
)

type ResetRepository struct {
	db postgres.DBTX
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{db: db}
}

// Preview reports how much progress a reset would remove.
func (s *ResetRepository) Preview(ctx context.Context) (*entities.ResetPreview, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT user_id), COALESCE(SUM(boulder_count), 0)
		FROM user_progress
	`

	var p entities.ResetPreview
	var boulders int64
	if err := s.db.QueryRow(ctx, query).Scan(&p.Records, &p.Users, &boulders); err != nil {
		return nil, fmt.Errorf("reset preview: %w", err)
	}
	p.Points = boulders * entities.PointsPerBoulder

	return &p, nil
}

// DeleteAll removes the progress of every user in a single statement.
func (s *ResetRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM user_progress`)
	if err != nil {
		return 0, fmt.Errorf("delete user_progress: %w", err)
	}

	return tag.RowsAffected(), nil
}
