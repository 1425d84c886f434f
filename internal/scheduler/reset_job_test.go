package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

type fakeResetter struct {
	callers []entities.CallerKind
	err     error
}

func (f *fakeResetter) Execute(_ context.Context, caller entities.CallerKind) (*entities.ResetResult, error) {
	f.callers = append(f.callers, caller)
	if f.err != nil {
		return nil, f.err
	}
	return &entities.ResetResult{Success: true, DeletedRecords: 3}, nil
}

type fakeObserver struct {
	results []*entities.ResetResult
}

func (f *fakeObserver) ObserveReset(_ entities.CallerKind, result *entities.ResetResult) {
	f.results = append(f.results, result)
}

type fakePurger struct{ calls int }

func (f *fakePurger) PurgeExpiredSessions(context.Context) (int64, error) {
	f.calls++
	return 2, nil
}

func TestScheduler_RunReset(t *testing.T) {
	resetter := &fakeResetter{}
	observer := &fakeObserver{}
	s := New(resetter, nil, observer, zap.NewNop(), Options{})

	s.RunReset(context.Background())

	assert.Equal(t, []entities.CallerKind{entities.CallerScheduled}, resetter.callers)
	require.Len(t, observer.results, 1)
	assert.Equal(t, int64(3), observer.results[0].DeletedRecords)
}

func TestScheduler_RunReset_Failure(t *testing.T) {
	observer := &fakeObserver{}
	s := New(&fakeResetter{err: errors.New("db down")}, nil, observer, zap.NewNop(), Options{})

	s.RunReset(context.Background())

	require.Len(t, observer.results, 1)
	assert.Nil(t, observer.results[0])
}

func TestScheduler_Start_RejectsBadSpec(t *testing.T) {
	s := New(&fakeResetter{}, nil, nil, zap.NewNop(), Options{ResetSpec: "not a cron"})

	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_StartStop(t *testing.T) {
	purger := &fakePurger{}
	loc := time.FixedZone("CET", 3600)

	s := New(&fakeResetter{}, purger, nil, zap.NewNop(), Options{ResetSpec: "0 0 1 * *", Location: loc})
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()

	s.PurgeSessions(context.Background())
	assert.Equal(t, 1, purger.calls)
}
