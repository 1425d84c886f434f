package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

// CatalogService serves the boulder catalog, optionally through a cache.
type CatalogService struct {
	repository BoulderRepository
	cache      CatalogCache
	logger     *zap.Logger
}

// NewCatalogService creates the service. cache may be nil.
func NewCatalogService(repository BoulderRepository, cache CatalogCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

// List returns the catalog ordered by color rank, then zone rank.
// Cache failures fall back to the database.
func (s *CatalogService) List(ctx context.Context) ([]*entities.Boulder, error) {
	if s.cache != nil {
		boulders, ok, err := s.cache.GetCatalog(ctx)
		if err != nil {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			return boulders, nil
		}
	}

	boulders, err := s.repository.List(ctx)
	if err != nil {
		return nil, err
	}
	sortCatalog(boulders)

	if s.cache != nil && len(boulders) > 0 {
		if err := s.cache.SetCatalog(ctx, boulders); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}

	return boulders, nil
}

// Get returns the boulder with the given ID.
func (s *CatalogService) Get(ctx context.Context, id string) (*entities.Boulder, error) {
	boulders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range boulders {
		if b.ID == id {
			return b, nil
		}
	}

	return nil, ErrUnknownBoulder
}

func sortCatalog(boulders []*entities.Boulder) {
	slices.SortStableFunc(boulders, func(a, b *entities.Boulder) int {
		if d := a.Color.Rank() - b.Color.Rank(); d != 0 {
			return d
		}
		return a.Zone.Rank() - b.Zone.Rank()
	})
}
