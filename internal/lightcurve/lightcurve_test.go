package lightcurve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/model"
	"lightcurve-monitor/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	ObjectByIDFunc             func(ctx context.Context, id int64) (model.Object, error)
	ObjectsNearFunc            func(ctx context.Context, ra, dec, tol float64) ([]model.Object, error)
	ForcedSourcesForObjectFunc func(ctx context.Context, objectID int64) ([]store.ForcedSourceRow, error)
}

func (m *mockStore) DB() *gorm.DB { return nil }

func (m *mockStore) ObjectByID(ctx context.Context, id int64) (model.Object, error) {
	return m.ObjectByIDFunc(ctx, id)
}

func (m *mockStore) ObjectsNear(ctx context.Context, ra, dec, tol float64) ([]model.Object, error) {
	return m.ObjectsNearFunc(ctx, ra, dec, tol)
}

func (m *mockStore) ForcedSourcesForObject(ctx context.Context, objectID int64) ([]store.ForcedSourceRow, error) {
	return m.ForcedSourcesForObjectFunc(ctx, objectID)
}

func (m *mockStore) LatestEpoch(ctx context.Context, objectID int64) (time.Time, error) {
	return time.Time{}, nil
}

func (m *mockStore) SubscribedObjectIDs(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func ptrI64(v int64) *int64     { return &v }
func ptrF64(v float64) *float64 { return &v }

func newTestCurve(t *testing.T, s store.Store) *LightCurve {
	t.Helper()
	lc, err := New(s, config.LightCurveConfig{}, []string{"u", "g", "r", "i", "z", "y"})
	require.NoError(t, err)
	return lc
}

func TestBuildFromDB_SelectorValidation(t *testing.T) {
	lc := newTestCurve(t, &mockStore{})

	testCases := []struct {
		name string
		opts BuildOpts
	}{
		{name: "neither selector", opts: BuildOpts{}},
		{name: "both selectors", opts: BuildOpts{ObjectID: ptrI64(7), RA: ptrF64(53.1), Dec: ptrF64(-27.5), Tol: 0.005}},
		{name: "ra without dec", opts: BuildOpts{RA: ptrF64(53.1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := lc.BuildFromDB(context.Background(), tc.opts)
			assert.ErrorIs(t, err, ErrInvalidSelector)
		})
	}
}

func TestBuildFromDB_NoMatch(t *testing.T) {
	lc := newTestCurve(t, &mockStore{
		ObjectsNearFunc: func(ctx context.Context, ra, dec, tol float64) ([]model.Object, error) {
			return nil, nil
		},
	})

	err := lc.BuildFromDB(context.Background(), BuildOpts{RA: ptrF64(53.1), Dec: ptrF64(-27.5), Tol: 0.005})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestBuildFromDB_ByObjectID(t *testing.T) {
	obsStart := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &mockStore{
		ObjectByIDFunc: func(ctx context.Context, id int64) (model.Object, error) {
			assert.Equal(t, int64(42), id)
			return model.Object{ObjectID: 42, RA: 53.12, Dec: -27.41}, nil
		},
		ForcedSourcesForObjectFunc: func(ctx context.Context, objectID int64) ([]store.ForcedSourceRow, error) {
			return []store.ForcedSourceRow{
				{VisitID: 170, Filter: "r", ObsStart: obsStart, PsfFlux: 101.5, PsfFluxErr: 2.5},
				{VisitID: 185, Filter: "g", ObsStart: obsStart.Add(10 * time.Minute), PsfFlux: 98.0, PsfFluxErr: 2.1},
			}, nil
		},
	}
	lc := newTestCurve(t, s)

	require.NoError(t, lc.BuildFromDB(context.Background(), BuildOpts{ObjectID: ptrI64(42)}))

	points, err := lc.Points()
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "lsstr", points[0].Bandpass)
	assert.Equal(t, int64(170), points[0].VisitID)
	assert.Equal(t, 101.5, points[0].Flux)
	assert.Equal(t, 2.5, points[0].FluxErr)
	assert.Equal(t, 53.12, points[0].RA)
	assert.Equal(t, -27.41, points[0].Dec)
	assert.Equal(t, 25.0, points[0].ZP)
	assert.Equal(t, "ab", points[0].ZPSys)

	// MJD of the unix second 2022-01-01T00:00:00Z
	assert.InDelta(t, 59580.0, points[0].MJD, 1e-9)
	assert.InDelta(t, 59580.0+10.0/1440.0, points[1].MJD, 1e-9)
}

func TestBuildFromDB_AmbiguousMatchUsesFirst(t *testing.T) {
	s := &mockStore{
		ObjectsNearFunc: func(ctx context.Context, ra, dec, tol float64) ([]model.Object, error) {
			return []model.Object{
				{ObjectID: 1, RA: 53.10, Dec: -27.40},
				{ObjectID: 2, RA: 53.11, Dec: -27.41},
			}, nil
		},
		ForcedSourcesForObjectFunc: func(ctx context.Context, objectID int64) ([]store.ForcedSourceRow, error) {
			assert.Equal(t, int64(1), objectID)
			return nil, nil
		},
	}
	lc := newTestCurve(t, s)

	require.NoError(t, lc.BuildFromDB(context.Background(), BuildOpts{RA: ptrF64(53.1), Dec: ptrF64(-27.4), Tol: 0.05}))

	points, err := lc.Points()
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestPoints_NotBuilt(t *testing.T) {
	lc := newTestCurve(t, &mockStore{})

	_, err := lc.Points()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestMJDFromTime(t *testing.T) {
	// MJD 40587 is the unix epoch
	assert.Equal(t, 40587.0, MJDFromTime(time.Unix(0, 0)))
	// half a day later
	assert.InDelta(t, 40587.5, MJDFromTime(time.Unix(43200, 0)), 1e-12)
}
