package rest

import (
	"context"
	"time"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/service"
)

type AuthService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*entities.Profile, error)
	SignIn(ctx context.Context, email, password string) (*entities.Session, error)
	SignOut(ctx context.Context, token string) error
	ResolveToken(ctx context.Context, token string) (*entities.Profile, error)
	UserCount(ctx context.Context) (int64, int64, error)
}

type CatalogService interface {
	List(ctx context.Context) ([]*entities.Boulder, error)
}

type ProgressService interface {
	Ledger(ctx context.Context, userID string) ([]entities.ProgressEntry, error)
	SetCount(ctx context.Context, userID, boulderID string, count int) (*entities.ProgressEntry, error)
	Adjust(ctx context.Context, userID, boulderID string, delta int) (*entities.ProgressEntry, error)
	Stats(ctx context.Context, userID string, now time.Time) (entities.Stats, entities.Level, error)
}

type ResetService interface {
	Authorize(ctx context.Context, c service.Credentials) (service.Verdict, error)
	Execute(ctx context.Context, caller entities.CallerKind) (*entities.ResetResult, error)
	State() entities.ResetState
}

// Metrics receives request and reset observations.
type Metrics interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	ObserveReset(caller entities.CallerKind, result *entities.ResetResult)
	ObserveProgressWrite(kind string)
}
