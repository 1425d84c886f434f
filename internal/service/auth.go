package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
)

const minPasswordLength = 6

// AuthConfig tunes the identity provider.
type AuthConfig struct {
	SessionTTL        time.Duration
	MaxUsers          int64
	ProfileAttempts   int
	ProfileRetryDelay time.Duration
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthService registers climbers and issues bearer sessions.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	cfg      AuthConfig
	logger   *zap.Logger

	now      func() time.Time
	newToken func() string
}

func NewAuthService(users UserRepository, sessions SessionRepository, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.MaxUsers <= 0 {
		cfg.MaxUsers = entities.MaxUsers
	}
	if cfg.ProfileAttempts <= 0 {
		cfg.ProfileAttempts = 3
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// SignUp validates the form, enforces the registration cap and creates the
// identity and its profile.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*entities.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateSignUp(in); err != nil {
		return nil, err
	}

	count, err := s.users.CountProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("check user limit: %w", err)
	}
	if count >= s.cfg.MaxUsers {
		return nil, ErrRegistrationClosed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &entities.Identity{Email: in.Email, PasswordHash: string(hash)}
	if err := s.users.CreateIdentity(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	profile := &entities.Profile{ID: identity.ID, Email: in.Email, Name: in.Name}
	if err := s.createProfile(ctx, profile); err != nil {
		// An identity without a profile can sign in but never resolve, and
		// it would keep the email taken.
		if derr := s.users.DeleteIdentity(context.WithoutCancel(ctx), identity.ID); derr != nil {
			s.logger.Error("remove orphan identity",
				zap.String("user_id", identity.ID),
				zap.Error(derr),
			)
		}
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", profile.ID),
		zap.Int64("registered", count+1),
	)

	return profile, nil
}

// createProfile retries because the identity row may not be visible to the
// profile insert right away.
func (s *AuthService) createProfile(ctx context.Context, profile *entities.Profile) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.ProfileAttempts; attempt++ {
		lastErr = s.users.CreateProfile(ctx, profile)
		if lastErr == nil {
			return nil
		}

		s.logger.Warn("create profile failed",
			zap.String("user_id", profile.ID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt == s.cfg.ProfileAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ProfileRetryDelay):
		}
	}

	return fmt.Errorf("%w: %v", ErrProfileNotCreated, lastErr)
}

func validateSignUp(in SignUpInput) error {
	if in.Name == "" {
		return invalid("name", "name is required")
	}
	if in.Email == "" {
		return invalid("email", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return invalid("email", "email is not valid")
	}
	if in.Password != in.ConfirmPassword {
		return invalid("confirm_password", "passwords do not match")
	}
	if len(in.Password) < minPasswordLength {
		return invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

// SignIn checks credentials and issues a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entities.Session, error) {
	identity, err := s.users.GetIdentityByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &entities.Session{
		Token:     s.newToken(),
		UserID:    identity.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SignOut revokes a session. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ResolveToken returns the profile behind a live session token.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*entities.Profile, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("delete expired session", zap.Error(err))
		}
		return nil, ErrInvalidToken
	}

	profile, err := s.users.GetProfile(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return profile, nil
}

// UserCount returns the number of registered profiles and the registration cap.
func (s *AuthService) UserCount(ctx context.Context) (int64, int64, error) {
	count, err := s.users.CountProfiles(ctx)
	if err != nil {
		return 0, 0, err
	}
	return count, s.cfg.MaxUsers, nil
}

// PurgeExpiredSessions drops sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
