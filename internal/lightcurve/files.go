package lightcurve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"

	"lightcurve-monitor/config"
	"lightcurve-monitor/internal/visits"
)

// forcedRow maps the columns of a per-visit forced-photometry table.
type forcedRow struct {
	ObjectID  int64   `fits:"objectId"`
	CoordRA   float64 `fits:"coord_ra"`
	CoordDec  float64 `fits:"coord_dec"`
	Flux      float64 `fits:"base_PsfFlux_flux"`
	FluxSigma float64 `fits:"base_PsfFlux_fluxSigma"`
}

// indexForcedFiles builds the per-band visit map from the fixed directory
// layout <fpTableDir>/0/v<visit>-f<band>/ and side-loads the visit→MJD
// mapping.
func (lc *LightCurve) indexForcedFiles(cfg config.LightCurveConfig) error {
	mjds, err := visits.LoadMJDs(cfg.MJDFile)
	if err != nil {
		return err
	}
	lc.visitMJD = mjds
	lc.fpTableDir = cfg.FPTableDir

	lc.visitMap = make(map[string][]string, len(lc.bandpasses))
	for _, band := range lc.bandpasses {
		lc.visitMap[band] = nil
	}

	entries, err := os.ReadDir(filepath.Join(cfg.FPTableDir, "0"))
	if err != nil {
		return fmt.Errorf("lightcurve: scan %s: %w", cfg.FPTableDir, err)
	}
	for _, e := range entries {
		name := e.Name()
		// directory naming convention: v<visit>-f<band>
		if len(name) < 4 || !strings.HasPrefix(name, "v") {
			continue
		}
		band := name[len(name)-1:]
		visit := name[1 : len(name)-3]
		if visit == "" {
			continue
		}
		if _, ok := lc.visitMap[band]; !ok {
			continue
		}
		lc.visitMap[band] = append(lc.visitMap[band], visit)
	}
	return nil
}

// BuildFromForcedFiles assembles the light curve by scanning the per-visit
// forced-photometry tables for rows matching the object id.
func (lc *LightCurve) BuildFromForcedFiles(objectID int64) error {
	if lc.fpTableDir == "" {
		return fmt.Errorf("lightcurve: no forced-photometry table directory configured")
	}

	points := []Point{}
	for _, band := range lc.bandpasses {
		for _, visit := range lc.visitMap[band] {
			// Hard-coded detector path, single-sensor simulation output.
			path := filepath.Join(lc.fpTableDir, "0", "v"+visit+"-f"+band, "R22", "S11.fits")
			row, found, err := findObjectRow(path, objectID)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			mjd, err := lc.mjdForVisit(visit)
			if err != nil {
				return err
			}
			points = append(points, Point{
				Bandpass: "lsst" + band,
				MJD:      mjd,
				RA:       row.CoordRA,
				Dec:      row.CoordDec,
				Flux:     row.Flux,
				FluxErr:  row.FluxSigma,
				ZP:       zeroPoint,
				ZPSys:    zeroPointSystem,
			})
		}
	}
	lc.points = points
	return nil
}

func (lc *LightCurve) mjdForVisit(visit string) (float64, error) {
	var id int64
	if _, err := fmt.Sscanf(visit, "%d", &id); err != nil {
		return 0, fmt.Errorf("lightcurve: bad visit number %q: %w", visit, err)
	}
	mjd, ok := lc.visitMJD[id]
	if !ok {
		return 0, fmt.Errorf("lightcurve: visit %s missing from mjd mapping", visit)
	}
	return mjd, nil
}

// findObjectRow opens one forced-photometry table and returns the first row
// matching the object id.
func findObjectRow(path string, objectID int64) (forcedRow, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return forcedRow{}, false, fmt.Errorf("lightcurve: open %s: %w", path, err)
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return forcedRow{}, false, fmt.Errorf("lightcurve: read fits %s: %w", path, err)
	}
	defer fits.Close()

	hdu := fits.HDU(1)
	table, ok := hdu.(*fitsio.Table)
	if !ok {
		return forcedRow{}, false, fmt.Errorf("lightcurve: %s HDU 1 is not a table", path)
	}

	rows, err := table.Read(0, table.NumRows())
	if err != nil {
		return forcedRow{}, false, fmt.Errorf("lightcurve: read table %s: %w", path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row forcedRow
		if err := rows.Scan(&row); err != nil {
			return forcedRow{}, false, fmt.Errorf("lightcurve: scan row in %s: %w", path, err)
		}
		if row.ObjectID == objectID {
			return row, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return forcedRow{}, false, fmt.Errorf("lightcurve: iterate %s: %w", path, err)
	}
	return forcedRow{}, false, nil
}
