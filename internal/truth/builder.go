// Package truth builds the simulated "truth" flux table: the per-visit
// fluxes of every catalog star in the monitored field.
package truth

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/catalog"
	"lightcurve-monitor/internal/db"
	"lightcurve-monitor/internal/model"
	"lightcurve-monitor/internal/opsim"
	"lightcurve-monitor/internal/phot"
	"lightcurve-monitor/internal/visits"

	"gorm.io/gorm"
)

// Builder accumulates truth fluxes across visits.
type Builder struct {
	cache  *catalog.StarCache
	obsGen *opsim.Generator
	dict   *phot.Dict
	sedDir string
	cfg    config.TruthConfig
	params phot.Params

	rows []model.TruthFlux
}

// NewBuilder wires a builder from its collaborators.
func NewBuilder(cache *catalog.StarCache, obsGen *opsim.Generator, dict *phot.Dict, sedDir string, cfg config.TruthConfig) *Builder {
	return &Builder{
		cache:  cache,
		obsGen: obsGen,
		dict:   dict,
		sedDir: sedDir,
		cfg:    cfg,
		params: phot.DefaultParams(),
	}
}

// Build computes fluxes for all stars in all given visits. A nil visit list
// falls back to the bundled CSV. Failures in metadata retrieval, catalog
// queries or SED loading abort the build and propagate.
func (b *Builder) Build(ctx context.Context, visitIDs []int64) error {
	if visitIDs == nil {
		var err error
		visitIDs, err = visits.LoadIDs(b.cfg.VisitCSV)
		if err != nil {
			return err
		}
	}

	region := opsim.Region{
		RAMin:       b.cfg.FieldRAMin,
		RAMax:       b.cfg.FieldRAMax,
		DecMin:      b.cfg.FieldDecMin,
		DecMax:      b.cfg.FieldDecMax,
		BoundLength: b.cfg.BoundLength,
	}

	metas := make([]opsim.ObservationMetaData, 0, len(visitIDs))
	for i, id := range visitIDs {
		if i%100 == 0 {
			log.Printf("Generated %d out of %d obs_metadata", i+1, len(visitIDs))
		}
		meta, err := b.obsGen.Get(id, region)
		if err != nil {
			return err
		}
		metas = append(metas, meta)
	}

	// The field is fixed, so the star set and their bandpass magnitudes are
	// identical across visits: SEDs are synthesized once, on the first visit.
	var (
		stars    []model.Star
		magArray map[string][]float64
	)

	for i, meta := range metas {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if i%100 == 0 {
			log.Printf("Generated fluxes for %d out of %d visits", i+1, len(metas))
		}

		if magArray == nil {
			var err error
			stars, err = b.cache.StarsInRegion(meta.FieldRA, meta.FieldDec, meta.BoundLength, b.cfg.MagCutoff)
			if err != nil {
				return err
			}
			magArray, err = b.loadMags(stars)
			if err != nil {
				return err
			}
		}

		bp, ok := b.dict.Get(meta.Filter)
		if !ok {
			return fmt.Errorf("truth: visit %d uses unknown filter %q", meta.ObsHistID, meta.Filter)
		}

		mags := magArray[meta.Filter]
		for j, star := range stars {
			if math.IsInf(mags[j], 0) || math.IsNaN(mags[j]) {
				log.Printf("truth: star %d has no flux through filter %q, skipping visit %d",
					star.ID, meta.Filter, meta.ObsHistID)
				continue
			}
			flux := phot.FluxFromMag(mags[j])
			snr, err := phot.SNR(mags[j], bp, meta.FiveSigmaDepth, b.params)
			if err != nil {
				return err
			}
			b.rows = append(b.rows, model.TruthFlux{
				UniqueID:      star.ID,
				RA:            star.RA,
				Dec:           star.Dec,
				Filter:        meta.Filter,
				TrueFlux:      flux,
				TrueFluxError: flux / snr,
				ObsHistID:     meta.ObsHistID,
			})
		}
	}
	return nil
}

// loadMags synthesizes each star's SED (normalized to its magnorm, reddened
// by its galactic Av) and computes its magnitude in every bandpass.
func (b *Builder) loadMags(stars []model.Star) (map[string][]float64, error) {
	seds := make([]*phot.Sed, len(stars))
	for i, star := range stars {
		sed, err := phot.LoadSed(filepath.Join(b.sedDir, star.SedFilename))
		if err != nil {
			return nil, fmt.Errorf("truth: star %d: %w", star.ID, err)
		}
		if err := sed.NormalizeToMagNorm(star.MagNorm); err != nil {
			return nil, fmt.Errorf("truth: star %d: %w", star.ID, err)
		}
		sed.ReddenCCM(star.GalacticAv)
		seds[i] = sed
	}
	return b.dict.MagArray(seds), nil
}

// Rows returns the accumulated truth fluxes.
func (b *Builder) Rows() []model.TruthFlux {
	return b.rows
}

// WriteToDB persists the accumulated rows verbatim to a named table in a
// sqlite file.
func (b *Builder) WriteToDB(path, table string) error {
	conn, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("truth: open %s: %w", path, err)
	}
	if err := conn.Table(table).AutoMigrate(&model.TruthFlux{}); err != nil {
		return fmt.Errorf("truth: migrate table %s: %w", table, err)
	}
	if len(b.rows) == 0 {
		return nil
	}
	if err := conn.Table(table).CreateInBatches(b.rows, 500).Error; err != nil {
		return fmt.Errorf("truth: write table %s: %w", table, err)
	}
	return nil
}

// ReadTable reads a previously written truth table back from a sqlite file.
func ReadTable(path, table string) ([]model.TruthFlux, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("truth: open %s: %w", path, err)
	}
	var rows []model.TruthFlux
	if err := readAll(conn, table, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readAll(conn *gorm.DB, table string, out *[]model.TruthFlux) error {
	if err := conn.Table(table).Order("id").Find(out).Error; err != nil {
		return fmt.Errorf("truth: read table %s: %w", table, err)
	}
	return nil
}
