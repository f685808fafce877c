// Package lightcurve assembles forced-photometry light curves from per-visit
// table files or from the forced-photometry database.
package lightcurve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/store"
)

var (
	// ErrInvalidSelector is returned when both or neither of object id and
	// sky position are specified.
	ErrInvalidSelector = errors.New("lightcurve: specify exactly one of object id or ra,dec location")
	// ErrNoMatch is returned when a coordinate search finds no object.
	ErrNoMatch = errors.New("lightcurve: no objects within specified ra,dec range")
	// ErrNotBuilt is returned when the curve is used before assembly.
	ErrNotBuilt = errors.New("lightcurve: no lightcurve yet, build one first")
)

// Fixed calibration placeholders attached to every assembled point.
const (
	zeroPoint       = 25.0
	zeroPointSystem = "ab"
)

// Point is one epoch of an assembled light curve.
type Point struct {
	Bandpass string  `json:"bandpass"`
	MJD      float64 `json:"mjd"`
	RA       float64 `json:"ra"`
	Dec      float64 `json:"dec"`
	Flux     float64 `json:"flux"`
	FluxErr  float64 `json:"flux_error"`
	ZP       float64 `json:"zp"`
	ZPSys    string  `json:"zpsys"`
	VisitID  int64   `json:"obsHistId,omitempty"`
}

// BuildOpts selects the object to assemble: exactly one of ObjectID or
// (RA, Dec) must be set.
type BuildOpts struct {
	ObjectID *int64
	RA       *float64
	Dec      *float64
	Tol      float64
}

// LightCurve fetches forced-photometry measurements and packages them for
// the accompanying visualization and API routines.
type LightCurve struct {
	store      store.Store
	bandpasses []string

	// file-based assembly state
	fpTableDir string
	visitMJD   map[int64]float64
	visitMap   map[string][]string

	points []Point
}

// New creates a light-curve assembler. When cfg.FPTableDir is set, the
// per-visit table tree is indexed and the visit→MJD mapping side-loaded for
// file-based assembly.
func New(s store.Store, cfg config.LightCurveConfig, filters []string) (*LightCurve, error) {
	lc := &LightCurve{store: s, bandpasses: filters}
	if cfg.FPTableDir != "" {
		if err := lc.indexForcedFiles(cfg); err != nil {
			return nil, err
		}
	}
	return lc, nil
}

// BuildFromDB assembles the light curve from the forced-photometry database.
func (lc *LightCurve) BuildFromDB(ctx context.Context, opts BuildOpts) error {
	hasID := opts.ObjectID != nil
	hasPos := opts.RA != nil && opts.Dec != nil
	if hasID == hasPos {
		return ErrInvalidSelector
	}

	var objectID int64
	var ra, dec float64
	if hasID {
		obj, err := lc.store.ObjectByID(ctx, *opts.ObjectID)
		if err != nil {
			return err
		}
		objectID, ra, dec = obj.ObjectID, obj.RA, obj.Dec
	} else {
		objs, err := lc.store.ObjectsNear(ctx, *opts.RA, *opts.Dec, opts.Tol)
		if err != nil {
			return err
		}
		if len(objs) == 0 {
			return ErrNoMatch
		}
		if len(objs) > 1 {
			log.Printf("lightcurve: %d objects within tol=%g of (%g, %g); using object %d",
				len(objs), opts.Tol, *opts.RA, *opts.Dec, objs[0].ObjectID)
		}
		objectID, ra, dec = objs[0].ObjectID, objs[0].RA, objs[0].Dec
	}

	rows, err := lc.store.ForcedSourcesForObject(ctx, objectID)
	if err != nil {
		return err
	}

	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{
			Bandpass: "lsst" + r.Filter,
			MJD:      MJDFromTime(r.ObsStart),
			RA:       ra,
			Dec:      dec,
			Flux:     r.PsfFlux,
			FluxErr:  r.PsfFluxErr,
			ZP:       zeroPoint,
			ZPSys:    zeroPointSystem,
			VisitID:  r.VisitID,
		}
	}
	lc.points = points
	return nil
}

// Points returns the assembled table.
func (lc *LightCurve) Points() ([]Point, error) {
	if lc.points == nil {
		return nil, ErrNotBuilt
	}
	return lc.points, nil
}

// MJDFromTime converts a UTC timestamp to a modified Julian date.
func MJDFromTime(t time.Time) float64 {
	const mjdUnixEpoch = 40587.0
	return mjdUnixEpoch + float64(t.UnixMilli())/86400000.0
}

func (lc *LightCurve) String() string {
	return fmt.Sprintf("LightCurve(%d points, %d bandpasses)", len(lc.points), len(lc.bandpasses))
}
