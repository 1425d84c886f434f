package service

import (
	"context"
	"crypto/subtle"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

// PlaceholderToken is the bearer value clients send when they have no session.
const PlaceholderToken = "dummy"

// Credentials are the authorization inputs of a reset request.
type Credentials struct {
	Secret      string // x-simple-reset-secret header
	BearerToken string // token part of the Authorization header
}

// Verdict is the answer of a single credential strategy.
type Verdict struct {
	Authorized bool
	Caller     entities.CallerKind
	Strategy   string
	Subject    string // user ID for manual callers
	Reason     string // why the strategy declined
}

// CredentialStrategy decides whether a set of credentials is enough to run a reset.
type CredentialStrategy interface {
	Name() string
	Authorize(ctx context.Context, c Credentials) Verdict
}

// SharedSecretStrategy accepts requests carrying the configured shared secret.
type SharedSecretStrategy struct {
	secret string
}

func NewSharedSecretStrategy(secret string) *SharedSecretStrategy {
	return &SharedSecretStrategy{secret: secret}
}

func (s *SharedSecretStrategy) Name() string { return "shared-secret" }

func (s *SharedSecretStrategy) Authorize(_ context.Context, c Credentials) Verdict {
	if c.Secret == "" || s.secret == "" {
		return Verdict{Strategy: s.Name(), Reason: "no secret"}
	}
	if subtle.ConstantTimeCompare([]byte(c.Secret), []byte(s.secret)) != 1 {
		return Verdict{Strategy: s.Name(), Reason: "secret mismatch"}
	}

	return Verdict{Authorized: true, Caller: entities.CallerAutomated, Strategy: s.Name()}
}

// BearerTokenStrategy accepts requests from any signed-in user.
type BearerTokenStrategy struct {
	resolver TokenResolver
}

func NewBearerTokenStrategy(resolver TokenResolver) *BearerTokenStrategy {
	return &BearerTokenStrategy{resolver: resolver}
}

func (s *BearerTokenStrategy) Name() string { return "bearer-token" }

func (s *BearerTokenStrategy) Authorize(ctx context.Context, c Credentials) Verdict {
	if c.BearerToken == "" || c.BearerToken == PlaceholderToken {
		return Verdict{Strategy: s.Name(), Reason: "no token"}
	}

	profile, err := s.resolver.ResolveToken(ctx, c.BearerToken)
	if err != nil || profile == nil {
		reason := "token not resolved"
		if err != nil {
			reason = err.Error()
		}
		return Verdict{Strategy: s.Name(), Reason: reason}
	}

	return Verdict{Authorized: true, Caller: entities.CallerManual, Strategy: s.Name(), Subject: profile.ID}
}
