package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
	"github.com/aliskhannn/boulder-progress/internal/service"
)

const (
	goodToken = "good-token"
	secret    = "s3cret"
)

var fixedNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

type stubAuth struct{}

func (stubAuth) SignUp(_ context.Context, in service.SignUpInput) (*entities.Profile, error) {
	if in.Name == "" {
		return nil, &service.ValidationError{Field: "name", Message: "name is required"}
	}
	return &entities.Profile{ID: "u1", Name: in.Name, Email: in.Email}, nil
}

func (stubAuth) SignIn(_ context.Context, email, password string) (*entities.Session, error) {
	if password != "secret1" {
		return nil, service.ErrInvalidCredentials
	}
	return &entities.Session{Token: goodToken, UserID: "u1", ExpiresAt: fixedNow.Add(time.Hour)}, nil
}

func (stubAuth) SignOut(context.Context, string) error { return nil }

func (stubAuth) ResolveToken(_ context.Context, token string) (*entities.Profile, error) {
	if token != goodToken {
		return nil, service.ErrInvalidToken
	}
	return &entities.Profile{ID: "u1", Name: "Ana"}, nil
}

func (stubAuth) UserCount(context.Context) (int64, int64, error) { return 12, 200, nil }

type stubCatalog struct{}

func (stubCatalog) List(context.Context) ([]*entities.Boulder, error) {
	return []*entities.Boulder{{ID: "b1", Color: entities.ColorVerdes, Zone: entities.ZoneProa, Points: 100}}, nil
}

type stubProgress struct {
	deltas    []int
	adjustErr error
	statsAt   time.Time
}

func (s *stubProgress) Ledger(context.Context, string) ([]entities.ProgressEntry, error) {
	return []entities.ProgressEntry{}, nil
}

func (s *stubProgress) SetCount(_ context.Context, _, boulderID string, count int) (*entities.ProgressEntry, error) {
	if boulderID != "b1" {
		return nil, service.ErrUnknownBoulder
	}
	if count > math.MaxInt32 {
		return nil, &service.ValidationError{Field: "count", Message: "count must not exceed 2147483647"}
	}
	if count <= 0 {
		return nil, nil
	}
	return &entities.ProgressEntry{BoulderID: boulderID, Count: count}, nil
}

func (s *stubProgress) Adjust(_ context.Context, _, boulderID string, delta int) (*entities.ProgressEntry, error) {
	s.deltas = append(s.deltas, delta)
	if s.adjustErr != nil {
		return nil, s.adjustErr
	}
	return &entities.ProgressEntry{BoulderID: boulderID, Count: 1}, nil
}

func (s *stubProgress) Stats(_ context.Context, _ string, now time.Time) (entities.Stats, entities.Level, error) {
	s.statsAt = now
	stats := entities.NewStats()
	stats.TotalBoulders = 11
	stats.TotalPoints = 1100
	return stats, entities.LevelFor(1100), nil
}

type stubReset struct {
	execErr  error
	executed []entities.CallerKind
}

func (s *stubReset) Authorize(_ context.Context, c service.Credentials) (service.Verdict, error) {
	switch {
	case c.Secret == secret:
		return service.Verdict{Authorized: true, Caller: entities.CallerAutomated}, nil
	case c.BearerToken == goodToken:
		return service.Verdict{Authorized: true, Caller: entities.CallerManual, Subject: "u1"}, nil
	}
	return service.Verdict{}, service.ErrUnauthorized
}

func (s *stubReset) Execute(_ context.Context, caller entities.CallerKind) (*entities.ResetResult, error) {
	s.executed = append(s.executed, caller)
	if s.execErr != nil {
		return nil, s.execErr
	}
	return &entities.ResetResult{
		Success:        true,
		DeletedRecords: 5,
		ResetTimestamp: fixedNow,
		Message:        "Reset completed: 5 records deleted",
	}, nil
}

func (s *stubReset) State() entities.ResetState { return entities.ResetIdle }

func newTestHandler(reset *stubReset, progress *stubProgress, opts Options) http.Handler {
	h := NewHandler(stubAuth{}, stubCatalog{}, progress, reset, nil, nil, zap.NewNop(), opts)
	h.now = func() time.Time { return fixedNow }
	return h.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestMonthlyReset_Preflight(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodOptions, "/functions/v1/simple-monthly-reset", "", map[string]string{
		"Access-Control-Request-Method": http.MethodPost,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestMonthlyReset_Unauthorized(t *testing.T) {
	reset := &stubReset{}
	h := newTestHandler(reset, &stubProgress{}, Options{})

	for _, headers := range []map[string]string{
		nil,
		{"Authorization": "Bearer dummy"},
		{"Authorization": "Bearer forged"},
		{resetSecretHeader: "wrong"},
	} {
		rec := do(t, h, http.MethodPost, "/functions/v1/simple-monthly-reset", "", headers)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, map[string]any{"error": "Unauthorized - invalid secret or token"}, decode(t, rec))
	}
	assert.Empty(t, reset.executed)
}

func TestMonthlyReset_Success(t *testing.T) {
	reset := &stubReset{}
	h := newTestHandler(reset, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodPost, "/functions/v1/simple-monthly-reset", "", map[string]string{resetSecretHeader: secret})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, resetSuccessMessage, body["message"])
	assert.Equal(t, "2026-06-01T00:00:00Z", body["timestamp"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, details["success"])
	assert.Equal(t, 5.0, details["deleted_records"])
	assert.Equal(t, "2026-06-01T00:00:00Z", details["reset_timestamp"])
	assert.Equal(t, []entities.CallerKind{entities.CallerAutomated}, reset.executed)
}

func TestMonthlyReset_BearerIsManual(t *testing.T) {
	reset := &stubReset{}
	h := newTestHandler(reset, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodPost, "/functions/v1/simple-monthly-reset", "", map[string]string{"Authorization": "Bearer " + goodToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []entities.CallerKind{entities.CallerManual}, reset.executed)
}

func TestMonthlyReset_Failure(t *testing.T) {
	reset := &stubReset{execErr: errors.New("reset progress: permission denied")}
	h := newTestHandler(reset, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodPost, "/functions/v1/simple-monthly-reset", "", map[string]string{resetSecretHeader: secret})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "reset progress: permission denied", body["error"])
	assert.Equal(t, "2026-06-01T00:00:00Z", body["timestamp"])
}

func TestProgressRoutes_RequireAuth(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodGet, "/api/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/stats", "", map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProgressRoutes(t *testing.T) {
	progress := &stubProgress{}
	h := newTestHandler(&stubReset{}, progress, Options{})
	auth := map[string]string{"Authorization": "Bearer " + goodToken}

	rec := do(t, h, http.MethodPut, "/api/progress/b1", `{"count":3}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, 3.0, data["boulder_count"])

	rec = do(t, h, http.MethodPut, "/api/progress/b1", `{"count":0}`, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "progress removed", decode(t, rec)["message"])

	rec = do(t, h, http.MethodPut, "/api/progress/b1", `{}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/progress/zz", `{"count":1}`, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, h, http.MethodPost, "/api/progress/b1/increment", "", auth)
	do(t, h, http.MethodPost, "/api/progress/b1/decrement", "", auth)
	assert.Equal(t, []int{1, -1}, progress.deltas)

	rec = do(t, h, http.MethodGet, "/api/stats", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "next level: 900 points", stats["summary"])
}

func TestProgressRoutes_CountOutOfRange(t *testing.T) {
	progress := &stubProgress{
		adjustErr: fmt.Errorf("adjust progress: %w", &service.ValidationError{Field: "count", Message: "count must not exceed 2147483647"}),
	}
	h := newTestHandler(&stubReset{}, progress, Options{})
	auth := map[string]string{"Authorization": "Bearer " + goodToken}

	rec := do(t, h, http.MethodPut, "/api/progress/b1", `{"count":3000000000}`, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "count must not exceed 2147483647", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/progress/b1/increment", "", auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "count must not exceed 2147483647", decode(t, rec)["error"])
}

func TestStats_UsesConfiguredLocation(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	progress := &stubProgress{}
	h := newTestHandler(&stubReset{}, progress, Options{Location: madrid})

	rec := do(t, h, http.MethodGet, "/api/stats", "", map[string]string{"Authorization": "Bearer " + goodToken})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, madrid, progress.statsAt.Location())
	assert.True(t, fixedNow.Equal(progress.statsAt))
	assert.Equal(t, time.June, progress.statsAt.Month())
}

func TestStats_DefaultsToUTC(t *testing.T) {
	progress := &stubProgress{}
	h := newTestHandler(&stubReset{}, progress, Options{})

	rec := do(t, h, http.MethodGet, "/api/stats", "", map[string]string{"Authorization": "Bearer " + goodToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.UTC, progress.statsAt.Location())
}

func TestListBoulders_Labels(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodGet, "/api/boulders", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	boulder := data[0].(map[string]any)
	assert.Equal(t, "b1", boulder["id"])
	assert.Equal(t, "verdes", boulder["color"])
	assert.Equal(t, "Verdes", boulder["color_label"])
	assert.Equal(t, "Proa", boulder["zone_label"])
}

func TestAuthRoutes(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodPost, "/api/auth/signup", `{"name":"","email":"a@b.c","password":"x","confirm_password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/api/auth/signin", `{"email":"a@b.c","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/signin", `{"email":"a@b.c","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goodToken, decode(t, rec)["data"].(map[string]any)["token"])

	rec = do(t, h, http.MethodGet, "/api/users/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.0, decode(t, rec)["data"].(map[string]any)["count"])
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{AuthRateLimit: 0.001, AuthRateBurst: 2})
	body := `{"email":"a@b.c","password":"nope"}`

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/auth/signin", body, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/auth/signin", body, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/api/auth/signin", body, nil).Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&stubReset{}, &stubProgress{}, Options{})

	rec := do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decode(t, rec)["reset_state"])
}
