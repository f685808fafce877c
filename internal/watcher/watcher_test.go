package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/model"
	"lightcurve-monitor/internal/notification"
	"lightcurve-monitor/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	SubscribedObjectIDsFunc func(ctx context.Context) ([]int64, error)
	LatestEpochFunc         func(ctx context.Context, objectID int64) (time.Time, error)
}

func (m *mockStore) DB() *gorm.DB { return nil }

func (m *mockStore) ObjectByID(ctx context.Context, id int64) (model.Object, error) {
	return model.Object{}, nil
}

func (m *mockStore) ObjectsNear(ctx context.Context, ra, dec, tol float64) ([]model.Object, error) {
	return nil, nil
}

func (m *mockStore) ForcedSourcesForObject(ctx context.Context, objectID int64) ([]store.ForcedSourceRow, error) {
	return nil, nil
}

func (m *mockStore) LatestEpoch(ctx context.Context, objectID int64) (time.Time, error) {
	return m.LatestEpochFunc(ctx, objectID)
}

func (m *mockStore) SubscribedObjectIDs(ctx context.Context) ([]int64, error) {
	return m.SubscribedObjectIDsFunc(ctx)
}

func drainJobs(pool *notification.WorkerPool) []int64 {
	var ids []int64
	for {
		select {
		case id := <-pool.Jobs():
			ids = append(ids, id)
		default:
			return ids
		}
	}
}

func TestCheckOnce(t *testing.T) {
	epochs := map[int64]time.Time{
		7:  time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		42: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	s := &mockStore{
		SubscribedObjectIDsFunc: func(ctx context.Context) ([]int64, error) {
			return []int64{7, 42}, nil
		},
		LatestEpochFunc: func(ctx context.Context, objectID int64) (time.Time, error) {
			return epochs[objectID], nil
		},
	}
	// The pool is never started; jobs stay in the channel for inspection.
	pool := notification.NewWorkerPool(4, nil, &webpush.Options{})
	svc := NewService(&config.Config{}, s, pool)

	// First cycle establishes the baseline without notifying.
	svc.CheckOnce(context.Background())
	assert.Empty(t, drainJobs(pool))

	// Nothing changed: still quiet.
	svc.CheckOnce(context.Background())
	assert.Empty(t, drainJobs(pool))

	// A new epoch for object 42 triggers one dispatch.
	epochs[42] = epochs[42].Add(time.Hour)
	svc.CheckOnce(context.Background())
	assert.Equal(t, []int64{42}, drainJobs(pool))

	// The dispatched epoch becomes the new baseline.
	svc.CheckOnce(context.Background())
	assert.Empty(t, drainJobs(pool))
}

func TestCheckOnce_SkipsObjectsWithoutEpochs(t *testing.T) {
	s := &mockStore{
		SubscribedObjectIDsFunc: func(ctx context.Context) ([]int64, error) {
			return []int64{7}, nil
		},
		LatestEpochFunc: func(ctx context.Context, objectID int64) (time.Time, error) {
			return time.Time{}, nil
		},
	}
	pool := notification.NewWorkerPool(1, nil, &webpush.Options{})
	svc := NewService(&config.Config{}, s, pool)

	svc.CheckOnce(context.Background())
	svc.CheckOnce(context.Background())
	assert.Empty(t, drainJobs(pool))

	// An object without epochs never enters the baseline.
	require.Empty(t, svc.lastSeen)
}

func TestRun_DisabledDoesNothing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Watcher.Enabled = false

	svc := NewService(cfg, &mockStore{}, notification.NewWorkerPool(1, nil, &webpush.Options{}))

	// Returns immediately instead of blocking on the poll loop.
	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a disabled watcher")
	}
}
