package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
)

// maxCount is the largest value the boulder_count column holds.
const maxCount = math.MaxInt32

var errCountTooLarge = invalid("count", fmt.Sprintf("count must not exceed %d", maxCount))

// ProgressService manages the monthly boulder ledger of a user.
type ProgressService struct {
	tr         Transactor
	repository ProgressRepository
	boulders   BoulderLookup
	logger     *zap.Logger
}

func NewProgressService(tr Transactor, repository ProgressRepository, boulders BoulderLookup, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		tr:         tr,
		repository: repository,
		boulders:   boulders,
		logger:     logger,
	}
}

// Ledger returns every entry of the user, newest first.
func (s *ProgressService) Ledger(ctx context.Context, userID string) ([]entities.ProgressEntry, error) {
	return s.repository.ListByUser(ctx, userID)
}

// SetCount stores an absolute count for a boulder. Counts below one remove the
// entry and return nil.
func (s *ProgressService) SetCount(ctx context.Context, userID, boulderID string, count int) (*entities.ProgressEntry, error) {
	if count > maxCount {
		return nil, errCountTooLarge
	}

	boulder, err := s.lookup(ctx, boulderID)
	if err != nil {
		return nil, err
	}

	entry, err := s.repository.Upsert(ctx, userID, boulderID, entities.ClampCount(count))
	if err != nil {
		return nil, err
	}
	if entry != nil {
		entry.Boulder = boulder
	}

	return entry, nil
}

// Adjust adds delta to the stored count. Concurrent adjustments of the same
// pair are serialized, and the result never drops below zero.
func (s *ProgressService) Adjust(ctx context.Context, userID, boulderID string, delta int) (*entities.ProgressEntry, error) {
	boulder, err := s.lookup(ctx, boulderID)
	if err != nil {
		return nil, err
	}

	var entry *entities.ProgressEntry
	err = s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repo := repository.NewProgressRepository(tx)

		if err := repo.LockPair(ctx, userID, boulderID); err != nil {
			return err
		}

		current, err := repo.Count(ctx, userID, boulderID)
		if err != nil {
			return err
		}
		if delta > 0 && current > maxCount-delta {
			return errCountTooLarge
		}

		entry, err = repo.Upsert(ctx, userID, boulderID, entities.ClampCount(current+delta))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("adjust progress: %w", err)
	}

	if entry != nil {
		entry.Boulder = boulder
	}

	s.logger.Debug("progress adjusted",
		zap.String("user_id", userID),
		zap.String("boulder_id", boulderID),
		zap.Int("delta", delta),
	)

	return entry, nil
}

// Stats aggregates the ledger relative to now and derives the climber level.
func (s *ProgressService) Stats(ctx context.Context, userID string, now time.Time) (entities.Stats, entities.Level, error) {
	entries, err := s.repository.ListByUser(ctx, userID)
	if err != nil {
		return entities.Stats{}, entities.Level{}, err
	}

	stats := entities.ComputeStats(entries, now)
	return stats, entities.LevelFor(stats.TotalPoints), nil
}

func (s *ProgressService) lookup(ctx context.Context, boulderID string) (*entities.Boulder, error) {
	if s.boulders == nil {
		return nil, nil
	}

	boulder, err := s.boulders.Get(ctx, boulderID)
	if err != nil {
		if errors.Is(err, ErrUnknownBoulder) {
			return nil, ErrUnknownBoulder
		}
		return nil, err
	}

	return boulder, nil
}
