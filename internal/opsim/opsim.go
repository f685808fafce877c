// Package opsim reads survey pointing metadata out of an OpSim database.
package opsim

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lightcurve-monitor/internal/db"
)

// ObservationMetaData describes one visit's pointing.
type ObservationMetaData struct {
	ObsHistID      int64
	FieldRA        float64 // degrees
	FieldDec       float64 // degrees
	Filter         string
	FiveSigmaDepth float64
	MJD            float64
	BoundLength    float64 // degrees, carried from the query
}

// Region is a rectangular sky constraint in degrees.
type Region struct {
	RAMin, RAMax   float64
	DecMin, DecMax float64
	BoundLength    float64
}

// summaryRow maps the OpSim summary table columns we consume.
type summaryRow struct {
	ObsHistID      int64   `gorm:"column:obs_hist_id"`
	FieldRA        float64 `gorm:"column:field_ra"`
	FieldDec       float64 `gorm:"column:field_dec"`
	Filter         string  `gorm:"column:filter"`
	FiveSigmaDepth float64 `gorm:"column:five_sigma_depth"`
	ExpMJD         float64 `gorm:"column:exp_mjd"`
}

func (summaryRow) TableName() string { return "summary" }

// ErrVisitNotFound is returned when no pointing matches the visit id and
// region constraint.
var ErrVisitNotFound = errors.New("opsim: no pointing for visit in region")

// Generator retrieves observation metadata keyed by visit id.
type Generator struct {
	db *gorm.DB
}

// NewGenerator opens the OpSim sqlite database at path.
func NewGenerator(path string) (*Generator, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opsim: open %s: %w", path, err)
	}
	return &Generator{db: conn}, nil
}

// NewGeneratorFromDB wraps an existing connection, mainly for tests.
func NewGeneratorFromDB(conn *gorm.DB) *Generator {
	return &Generator{db: conn}
}

// Get returns the pointing for one visit, constrained to the region.
func (g *Generator) Get(obsHistID int64, region Region) (ObservationMetaData, error) {
	var row summaryRow
	err := g.db.
		Where("obs_hist_id = ?", obsHistID).
		Where("field_ra > ? AND field_ra < ?", region.RAMin, region.RAMax).
		Where("field_dec > ? AND field_dec < ?", region.DecMin, region.DecMax).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ObservationMetaData{}, fmt.Errorf("%w: %d", ErrVisitNotFound, obsHistID)
	}
	if err != nil {
		return ObservationMetaData{}, fmt.Errorf("opsim: visit %d: %w", obsHistID, err)
	}

	return ObservationMetaData{
		ObsHistID:      row.ObsHistID,
		FieldRA:        row.FieldRA,
		FieldDec:       row.FieldDec,
		Filter:         row.Filter,
		FiveSigmaDepth: row.FiveSigmaDepth,
		MJD:            row.ExpMJD,
		BoundLength:    region.BoundLength,
	}, nil
}
