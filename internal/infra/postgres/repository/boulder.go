package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
)

// BoulderRepository reads the boulder catalog.
type BoulderRepository struct {
	db postgres.DBTX
}

func NewBoulderRepository(db postgres.DBTX) *BoulderRepository {
	return &BoulderRepository{db: db}
}

// List returns every boulder ordered by color and zone.
func (r *BoulderRepository) List(ctx context.Context) ([]*entities.Boulder, error) {
	query := `
		SELECT id, color, zone, points, created_at
		FROM boulders
		ORDER BY color, zone
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list boulders: %w", err)
	}
	defer rows.Close()

	var boulders []*entities.Boulder
	for rows.Next() {
		var b entities.Boulder
		var color, zone string
		if err := rows.Scan(&b.ID, &color, &zone, &b.Points, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("list boulders: %w", err)
		}
		b.Color = entities.Color(color)
		b.Zone = entities.Zone(zone)
		boulders = append(boulders, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list boulders: %w", err)
	}

	return boulders, nil
}
