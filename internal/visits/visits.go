// Package visits reads the flat-file visit inputs: the selected-visit list
// and the visit-to-MJD mapping.
package visits

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadIDs reads the selected-visits CSV. The first row is a header; the
// obsHistID column is located by name, falling back to the first column.
func LoadIDs(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("visits: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("visits: parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("visits: %s contains no visit rows", path)
	}

	col := 0
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "obsHistID") {
			col = i
			break
		}
	}

	ids := make([]int64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if col >= len(rec) {
			return nil, fmt.Errorf("visits: short row in %s: %v", path, rec)
		}
		// visit ids are sometimes written as floats
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("visits: bad visit id %q in %s: %w", rec[col], path, err)
		}
		ids = append(ids, int64(v))
	}
	return ids, nil
}

// LoadMJDs reads the headerless visit,mjd mapping CSV.
func LoadMJDs(path string) (map[int64]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("visits: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("visits: parse %s: %w", path, err)
	}

	mjds := make(map[int64]float64, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("visits: short row in %s: %v", path, rec)
		}
		visit, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("visits: bad visit number %q in %s: %w", rec[0], path, err)
		}
		mjd, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("visits: bad mjd %q in %s: %w", rec[1], path, err)
		}
		mjds[int64(visit)] = mjd
	}
	return mjds, nil
}
