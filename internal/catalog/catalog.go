// Package catalog provides access to the simulation "truth" star catalog.
package catalog

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"lightcurve-monitor/internal/db"
	"lightcurve-monitor/internal/model"
)

const (
	degToRad = math.Pi / 180
	// milliarcseconds per year to radians per year
	masYrToRadYr = degToRad / (1000 * 3600)
	// milliarcseconds to radians
	masToRad = math.Pi / 648000000
	// standard ratio of total to selective extinction
	rv = 3.1
)

// cacheRow maps the raw star_cache_table columns.
type cacheRow struct {
	SimObjID    int64   `gorm:"column:simobjid"`
	RA          float64 `gorm:"column:ra"`
	Decl        float64 `gorm:"column:decl"`
	GalL        float64 `gorm:"column:gal_l"`
	GalB        float64 `gorm:"column:gal_b"`
	MuRA        float64 `gorm:"column:mura"`
	MuDecl      float64 `gorm:"column:mudecl"`
	Parallax    float64 `gorm:"column:parallax"`
	EBV         float64 `gorm:"column:ebv"`
	VRad        float64 `gorm:"column:vrad"`
	VarParamStr string  `gorm:"column:varParamStr"`
	SedFilename string  `gorm:"column:sedfilename"`
	MagNorm     float64 `gorm:"column:magnorm"`
	GMag        float64 `gorm:"column:gmag"`
}

func (cacheRow) TableName() string { return "star_cache_table" }

// StarCache queries the star cache with the fixed column mapping applied.
type StarCache struct {
	db *gorm.DB
}

// Open connects to the star cache database by DSN.
func Open(dsn string) (*StarCache, error) {
	conn, err := db.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", dsn, err)
	}
	return &StarCache{db: conn}, nil
}

// NewFromDB wraps an existing connection, mainly for tests.
func NewFromDB(conn *gorm.DB) *StarCache {
	return &StarCache{db: conn}
}

// StarsInRegion returns all catalog stars within boundLength degrees of the
// pointing center whose gmag exceeds magCutoff.
func (c *StarCache) StarsInRegion(raDeg, decDeg, boundLength, magCutoff float64) ([]model.Star, error) {
	var rows []cacheRow
	err := c.db.
		Where("ra > ? AND ra < ?", raDeg-boundLength, raDeg+boundLength).
		Where("decl > ? AND decl < ?", decDeg-boundLength, decDeg+boundLength).
		Where("gmag > ?", magCutoff).
		Order("simobjid").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: region query: %w", err)
	}

	stars := make([]model.Star, len(rows))
	for i, r := range rows {
		stars[i] = mapRow(r)
	}
	return stars, nil
}

// mapRow applies the catalog column mapping: catalog angles are degrees and
// milliarcseconds, downstream consumers expect radians.
func mapRow(r cacheRow) model.Star {
	return model.Star{
		ID:              r.SimObjID,
		RA:              r.RA * degToRad,
		Dec:             r.Decl * degToRad,
		GalacticL:       r.GalL * degToRad,
		GalacticB:       r.GalB * degToRad,
		ProperMotionRA:  r.MuRA * masYrToRadYr,
		ProperMotionDec: r.MuDecl * masYrToRadYr,
		Parallax:        r.Parallax * masToRad,
		GalacticAv:      r.EBV * rv,
		RadialVelocity:  r.VRad,
		VarParamStr:     r.VarParamStr,
		SedFilename:     r.SedFilename,
		MagNorm:         r.MagNorm,
		GMag:            r.GMag,
	}
}
