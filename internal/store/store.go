package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lightcurve-monitor/internal/model"
)

// ForcedSourceRow is one forced-photometry epoch joined to its visit.
type ForcedSourceRow struct {
	VisitID    int64     `gorm:"column:visit_id"`
	Filter     string    `gorm:"column:filter_name"`
	ObsStart   time.Time `gorm:"column:obs_start"`
	PsfFlux    float64   `gorm:"column:psf_flux"`
	PsfFluxErr float64   `gorm:"column:psf_flux_sigma"`
}

// Store defines the forced-photometry database operations.
type Store interface {
	DB() *gorm.DB
	ObjectByID(ctx context.Context, id int64) (model.Object, error)
	ObjectsNear(ctx context.Context, ra, dec, tol float64) ([]model.Object, error)
	ForcedSourcesForObject(ctx context.Context, objectID int64) ([]ForcedSourceRow, error)
	LatestEpoch(ctx context.Context, objectID int64) (time.Time, error)
	SubscribedObjectIDs(ctx context.Context) ([]int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ObjectByID looks an object up by its identifier.
func (s *gormStore) ObjectByID(ctx context.Context, id int64) (model.Object, error) {
	var obj model.Object
	if err := s.db.WithContext(ctx).First(&obj, "object_id = ?", id).Error; err != nil {
		return model.Object{}, fmt.Errorf("failed to fetch object %d: %w", id, err)
	}
	return obj, nil
}

// ObjectsNear returns all objects within tol degrees (box search) of the
// given position.
func (s *gormStore) ObjectsNear(ctx context.Context, ra, dec, tol float64) ([]model.Object, error) {
	var objs []model.Object
	err := s.db.WithContext(ctx).
		Where("ra BETWEEN ? AND ?", ra-tol, ra+tol).
		// "dec" is reserved in postgres and has to stay quoted
		Where(`"dec" BETWEEN ? AND ?`, dec-tol, dec+tol).
		Order("object_id").
		Find(&objs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search objects near (%g, %g): %w", ra, dec, err)
	}
	return objs, nil
}

// ForcedSourcesForObject fetches all forced-source epochs for an object,
// joined to their visit metadata, in time order.
func (s *gormStore) ForcedSourcesForObject(ctx context.Context, objectID int64) ([]ForcedSourceRow, error) {
	var rows []ForcedSourceRow
	err := s.db.WithContext(ctx).
		Model(&model.ForcedSource{}).
		Select("ccd_visits.visit_id, ccd_visits.filter_name, ccd_visits.obs_start, forced_sources.psf_flux, forced_sources.psf_flux_sigma").
		Joins("JOIN ccd_visits ON ccd_visits.ccd_visit_id = forced_sources.ccd_visit_id").
		Where("forced_sources.object_id = ?", objectID).
		Order("ccd_visits.obs_start").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forced sources for object %d: %w", objectID, err)
	}
	return rows, nil
}

// LatestEpoch returns the newest forced-source visit start for an object.
// The zero time is returned when the object has no epochs yet.
func (s *gormStore) LatestEpoch(ctx context.Context, objectID int64) (time.Time, error) {
	var visit model.CcdVisit
	err := s.db.WithContext(ctx).
		Model(&model.CcdVisit{}).
		Joins("JOIN forced_sources ON forced_sources.ccd_visit_id = ccd_visits.ccd_visit_id").
		Where("forced_sources.object_id = ?", objectID).
		Order("ccd_visits.obs_start DESC").
		Take(&visit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch latest epoch for object %d: %w", objectID, err)
	}
	return visit.ObsStart, nil
}

// SubscribedObjectIDs lists the distinct object ids any subscriber watches.
func (s *gormStore) SubscribedObjectIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Table("subscription_object_mapping").
		Distinct("object_object_id").
		Order("object_object_id").
		Pluck("object_object_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed objects: %w", err)
	}
	return ids, nil
}
