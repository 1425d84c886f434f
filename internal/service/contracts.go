package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

type UserRepository interface {
	CreateIdentity(ctx context.Context, identity *entities.Identity) error
	DeleteIdentity(ctx context.Context, userID string) error
	GetIdentityByEmail(ctx context.Context, email string) (*entities.Identity, error)
	CreateProfile(ctx context.Context, profile *entities.Profile) error
	GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
	CountProfiles(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *entities.Session) error
	Get(ctx context.Context, token string) (*entities.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type BoulderRepository interface {
	List(ctx context.Context) ([]*entities.Boulder, error)
}

type ProgressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entities.ProgressEntry, error)
	Upsert(ctx context.Context, userID, boulderID string, count int) (*entities.ProgressEntry, error)
}

type ResetPreviewer interface {
	Preview(ctx context.Context) (*entities.ResetPreview, error)
}

// CatalogCache keeps the immutable boulder catalog close to the API.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]*entities.Boulder, bool, error)
	SetCatalog(ctx context.Context, boulders []*entities.Boulder) error
}

// BoulderLookup resolves catalog entries by ID.
type BoulderLookup interface {
	Get(ctx context.Context, id string) (*entities.Boulder, error)
}

// TokenResolver turns a bearer token into the profile that owns it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*entities.Profile, error)
}

// ResetNotifier announces completed resets.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, result *entities.ResetResult, caller entities.CallerKind) error
}
