package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestObjectByID(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	rows := sqlmock.NewRows([]string{"object_id", "ra", "dec"}).
		AddRow(int64(42), 53.12, -27.41)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "objects" WHERE object_id = $1`)).
		WithArgs(int64(42), 1).
		WillReturnRows(rows)

	obj, err := s.ObjectByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), obj.ObjectID)
	assert.Equal(t, 53.12, obj.RA)
	assert.Equal(t, -27.41, obj.Dec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectByID_NotFound(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "objects" WHERE object_id = $1`)).
		WithArgs(int64(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"object_id", "ra", "dec"}))

	_, err := s.ObjectByID(context.Background(), 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObjectsNear(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	rows := sqlmock.NewRows([]string{"object_id", "ra", "dec"}).
		AddRow(int64(1), 53.10, -27.40).
		AddRow(int64(2), 53.11, -27.41)
	mock.ExpectQuery(`SELECT \* FROM "objects" WHERE ra BETWEEN .* AND "dec" BETWEEN .* ORDER BY object_id`).
		WithArgs(53.1-0.005, 53.1+0.005, -27.4-0.005, -27.4+0.005).
		WillReturnRows(rows)

	objs, err := s.ObjectsNear(context.Background(), 53.1, -27.4, 0.005)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, int64(1), objs[0].ObjectID)
	assert.Equal(t, int64(2), objs[1].ObjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForcedSourcesForObject(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	t0 := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"visit_id", "filter_name", "obs_start", "psf_flux", "psf_flux_sigma"}).
		AddRow(int64(170), "r", t0, 101.5, 2.5).
		AddRow(int64(185), "g", t0.Add(10*time.Minute), 98.0, 2.1)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT ccd_visits.visit_id, ccd_visits.filter_name, ccd_visits.obs_start, forced_sources.psf_flux, forced_sources.psf_flux_sigma FROM "forced_sources" JOIN ccd_visits ON ccd_visits.ccd_visit_id = forced_sources.ccd_visit_id WHERE forced_sources.object_id = $1 ORDER BY ccd_visits.obs_start`)).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	got, err := s.ForcedSourcesForObject(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(170), got[0].VisitID)
	assert.Equal(t, "r", got[0].Filter)
	assert.Equal(t, 101.5, got[0].PsfFlux)
	assert.Equal(t, 2.5, got[0].PsfFluxErr)
	assert.True(t, got[1].ObsStart.After(got[0].ObsStart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestEpoch(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	latest := time.Date(2022, 1, 3, 4, 5, 6, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "ccd_visits" JOIN forced_sources .* ORDER BY ccd_visits\.obs_start DESC LIMIT \$[0-9]+`).
		WithArgs(int64(42), 1).
		WillReturnRows(sqlmock.NewRows([]string{"ccd_visit_id", "visit_id", "filter_name", "obs_start"}).
			AddRow(int64(9), int64(190), "i", latest))

	got, err := s.LatestEpoch(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.Equal(latest))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestEpoch_NoEpochs(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	mock.ExpectQuery(`SELECT .* FROM "ccd_visits" JOIN forced_sources .* ORDER BY ccd_visits\.obs_start DESC LIMIT \$[0-9]+`).
		WithArgs(int64(42), 1).
		WillReturnRows(sqlmock.NewRows([]string{"ccd_visit_id", "visit_id", "filter_name", "obs_start"}))

	got, err := s.LatestEpoch(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribedObjectIDs(t *testing.T) {
	gdb, mock := newTestDB(t)
	s := NewGormStore(gdb)

	rows := sqlmock.NewRows([]string{"object_object_id"}).
		AddRow(int64(7)).
		AddRow(int64(42))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT "object_object_id" FROM "subscription_object_mapping" ORDER BY object_object_id`)).
		WillReturnRows(rows)

	ids, err := s.SubscribedObjectIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
