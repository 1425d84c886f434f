package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("email already registered")
)

const uniqueViolation = "23505"

// UserRepository provides access to identities and profiles in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database handle.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateIdentity inserts a credential row and fills its ID and CreatedAt.
func (r *UserRepository) CreateIdentity(ctx context.Context, identity *entities.Identity) error {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, identity.Email, identity.PasswordHash).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("create identity: %w", err)
	}

	return nil
}

// DeleteIdentity removes an identity together with its profile and sessions.
func (r *UserRepository) DeleteIdentity(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}

	return nil
}

// GetIdentityByEmail retrieves credentials by email.
func (r *UserRepository) GetIdentityByEmail(ctx context.Context, email string) (*entities.Identity, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var identity entities.Identity
	err := r.db.QueryRow(ctx, query, email).Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	return &identity, nil
}

// CreateProfile mirrors an identity into the profiles table.
func (r *UserRepository) CreateProfile(ctx context.Context, profile *entities.Profile) error {
	query := `
		INSERT INTO profiles (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query, profile.ID, profile.Email, profile.Name).Scan(&profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by user ID.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	query := `
		SELECT id, email, name, created_at
		FROM profiles
		WHERE id = $1
	`

	var profile entities.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// CountProfiles returns the number of registered profiles.
func (r *UserRepository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT get_user_count()`).Scan(&count); err != nil {
		return 0, fmt.Errorf("get user count: %w", err)
	}

	return count, nil
}
