package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
)

// ResetService wipes the progress ledger of every user.
type ResetService struct {
	tr         Transactor
	previewer  ResetPreviewer
	strategies []CredentialStrategy
	notifier   ResetNotifier
	logger     *zap.Logger

	mu        sync.Mutex
	resetting atomic.Bool
	now       func() time.Time
}

// NewResetService builds the service. Strategies are consulted in order and the
// first one that authorizes wins. notifier may be nil.
func NewResetService(
	tr Transactor,
	previewer ResetPreviewer,
	strategies []CredentialStrategy,
	notifier ResetNotifier,
	logger *zap.Logger,
) *ResetService {
	return &ResetService{
		tr:         tr,
		previewer:  previewer,
		strategies: strategies,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Authorize runs the credential strategies and returns the first accepting verdict.
func (s *ResetService) Authorize(ctx context.Context, c Credentials) (Verdict, error) {
	reasons := make([]string, 0, len(s.strategies))
	for _, strategy := range s.strategies {
		v := strategy.Authorize(ctx, c)
		if v.Authorized {
			return v, nil
		}
		reasons = append(reasons, strategy.Name()+": "+v.Reason)
	}

	s.logger.Warn("reset rejected", zap.String("reasons", strings.Join(reasons, "; ")))

	return Verdict{}, ErrUnauthorized
}

// Execute deletes every progress row. Resets never overlap.
func (s *ResetService) Execute(ctx context.Context, caller entities.CallerKind) (*entities.ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetting.Store(true)
	defer s.resetting.Store(false)

	log := s.logger.With(zap.String("caller", string(caller)))

	if s.previewer != nil {
		preview, err := s.previewer.Preview(ctx)
		if err != nil {
			log.Warn("reset preview unavailable", zap.Error(err))
		} else {
			log.Info("reset starting",
				zap.Int64("records", preview.Records),
				zap.Int64("users", preview.Users),
				zap.Int64("points", preview.Points),
			)
		}
	}

	var deleted int64
	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		n, err := repository.NewResetRepository(tx).DeleteAll(ctx)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		log.Error("reset failed", zap.Error(err))
		return nil, fmt.Errorf("reset progress: %w", err)
	}

	result := &entities.ResetResult{
		Success:        true,
		DeletedRecords: deleted,
		ResetTimestamp: s.now().UTC(),
		Message:        fmt.Sprintf("Reset completed: %d records deleted", deleted),
	}

	log.Info("reset completed", zap.Int64("deleted_records", deleted))

	if s.notifier != nil {
		if err := s.notifier.NotifyReset(ctx, result, caller); err != nil {
			log.Warn("reset notification failed", zap.Error(err))
		}
	}

	return result, nil
}

// State reports whether a reset is in progress.
func (s *ResetService) State() entities.ResetState {
	if s.resetting.Load() {
		return entities.ResetResetting
	}
	return entities.ResetIdle
}
