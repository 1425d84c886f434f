package service

import (
	"context"
	"sync"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
)

type fakeUsers struct {
	mu             sync.Mutex
	count          int64
	identities     map[string]*entities.Identity
	profiles       map[string]*entities.Profile
	profileErrs    []error
	profileAttempt int
	deleted        []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		identities: make(map[string]*entities.Identity),
		profiles:   make(map[string]*entities.Profile),
	}
}

func (f *fakeUsers) CreateIdentity(_ context.Context, identity *entities.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.identities[identity.Email]; ok {
		return repository.ErrEmailTaken
	}
	identity.ID = "user-" + identity.Email
	f.identities[identity.Email] = identity
	return nil
}

func (f *fakeUsers) DeleteIdentity(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, userID)
	for email, identity := range f.identities {
		if identity.ID == userID {
			delete(f.identities, email)
		}
	}
	delete(f.profiles, userID)
	return nil
}

func (f *fakeUsers) GetIdentityByEmail(_ context.Context, email string) (*entities.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	identity, ok := f.identities[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return identity, nil
}

func (f *fakeUsers) CreateProfile(_ context.Context, profile *entities.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt := f.profileAttempt
	f.profileAttempt++
	if attempt < len(f.profileErrs) && f.profileErrs[attempt] != nil {
		return f.profileErrs[attempt]
	}

	f.profiles[profile.ID] = profile
	f.count++
	return nil
}

func (f *fakeUsers) GetProfile(_ context.Context, userID string) (*entities.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeUsers) CountProfiles(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*entities.Session)}
}

func (f *fakeSessions) Create(_ context.Context, s *entities.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

type fakeResolver struct {
	profiles map[string]*entities.Profile
}

func (f fakeResolver) ResolveToken(_ context.Context, token string) (*entities.Profile, error) {
	p, ok := f.profiles[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return p, nil
}

type fakePreviewer struct {
	preview *entities.ResetPreview
	err     error
}

func (f fakePreviewer) Preview(context.Context) (*entities.ResetPreview, error) {
	return f.preview, f.err
}

type fakeNotifier struct {
	mu      sync.Mutex
	results []*entities.ResetResult
	callers []entities.CallerKind
	err     error
}

func (f *fakeNotifier) NotifyReset(_ context.Context, result *entities.ResetResult, caller entities.CallerKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
	f.callers = append(f.callers, caller)
	return f.err
}

type fakeBoulders struct {
	boulders []*entities.Boulder
	calls    int
	err      error
}

func (f *fakeBoulders) List(context.Context) ([]*entities.Boulder, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*entities.Boulder, len(f.boulders))
	copy(out, f.boulders)
	return out, nil
}

type fakeCache struct {
	stored  []*entities.Boulder
	getErr  error
	setErr  error
	setCall int
}

func (f *fakeCache) GetCatalog(context.Context) ([]*entities.Boulder, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.stored, f.stored != nil, nil
}

func (f *fakeCache) SetCatalog(_ context.Context, boulders []*entities.Boulder) error {
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	f.stored = boulders
	return nil
}

type fakeProgress struct {
	entries  []entities.ProgressEntry
	upserted []int
}

func (f *fakeProgress) ListByUser(context.Context, string) ([]entities.ProgressEntry, error) {
	return f.entries, nil
}

func (f *fakeProgress) Upsert(_ context.Context, userID, boulderID string, count int) (*entities.ProgressEntry, error) {
	f.upserted = append(f.upserted, count)
	if count <= 0 {
		return nil, nil
	}
	return &entities.ProgressEntry{ID: "p1", UserID: userID, BoulderID: boulderID, Count: count}, nil
}

type lookupFunc func(ctx context.Context, id string) (*entities.Boulder, error)

func (f lookupFunc) Get(ctx context.Context, id string) (*entities.Boulder, error) { return f(ctx, id) }
