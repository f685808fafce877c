// Package phot implements the photometric calculations the light-curve
// pipeline needs: bandpass throughputs, SED synthesis, AB magnitudes and
// m5-referenced signal-to-noise.
package phot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"
)

// Bandpass is a wavelength-dependent transmission curve. Wavelengths are in
// nanometers, throughput is dimensionless.
type Bandpass struct {
	Name    string
	Wavelen []float64
	Sb      []float64

	phi []float64 // normalized response per unit wavelength
}

// LoadBandpass reads a two-column (wavelength, throughput) file. Lines
// starting with '#' are ignored.
func LoadBandpass(path, name string) (*Bandpass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phot: open bandpass %s: %w", path, err)
	}
	defer f.Close()

	bp := &Bandpass{Name: name}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("phot: malformed bandpass line %q in %s", line, path)
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("phot: bad wavelength in %s: %w", path, err)
		}
		s, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("phot: bad throughput in %s: %w", path, err)
		}
		bp.Wavelen = append(bp.Wavelen, w)
		bp.Sb = append(bp.Sb, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("phot: read bandpass %s: %w", path, err)
	}
	if len(bp.Wavelen) < 2 {
		return nil, fmt.Errorf("phot: bandpass %s has fewer than two samples", path)
	}
	bp.computePhi()
	return bp, nil
}

// NewBandpass builds a bandpass from in-memory samples.
func NewBandpass(name string, wavelen, sb []float64) (*Bandpass, error) {
	if len(wavelen) != len(sb) || len(wavelen) < 2 {
		return nil, fmt.Errorf("phot: bandpass %s: need matching wavelength/throughput arrays", name)
	}
	bp := &Bandpass{Name: name, Wavelen: wavelen, Sb: sb}
	bp.computePhi()
	return bp, nil
}

// computePhi derives the normalized response function phi = (Sb/lambda) /
// integral(Sb/lambda dlambda) used for AB magnitudes.
func (b *Bandpass) computePhi() {
	b.phi = make([]float64, len(b.Wavelen))
	for i := range b.Wavelen {
		b.phi[i] = b.Sb[i] / b.Wavelen[i]
	}
	norm := integrate.Trapezoidal(b.Wavelen, b.phi)
	if norm > 0 {
		for i := range b.phi {
			b.phi[i] /= norm
		}
	}
}

// Dict is a named set of bandpasses with stable iteration order.
type Dict struct {
	Names    []string
	bandpass map[string]*Bandpass
}

// LoadDict loads total_<name>.dat throughput files from dir for each filter.
func LoadDict(dir string, filters []string) (*Dict, error) {
	d := &Dict{bandpass: make(map[string]*Bandpass, len(filters))}
	for _, name := range filters {
		path := filepath.Join(dir, "total_"+name+".dat")
		bp, err := LoadBandpass(path, name)
		if err != nil {
			return nil, err
		}
		d.Names = append(d.Names, name)
		d.bandpass[name] = bp
	}
	return d, nil
}

// NewDict builds a Dict from already-loaded bandpasses.
func NewDict(bps ...*Bandpass) *Dict {
	d := &Dict{bandpass: make(map[string]*Bandpass, len(bps))}
	for _, bp := range bps {
		d.Names = append(d.Names, bp.Name)
		d.bandpass[bp.Name] = bp
	}
	return d
}

// Get returns the bandpass for a filter name.
func (d *Dict) Get(name string) (*Bandpass, bool) {
	bp, ok := d.bandpass[name]
	return bp, ok
}

// MagArray computes the AB magnitude of each SED through each bandpass,
// keyed by filter name.
func (d *Dict) MagArray(seds []*Sed) map[string][]float64 {
	out := make(map[string][]float64, len(d.Names))
	for _, name := range d.Names {
		bp := d.bandpass[name]
		mags := make([]float64, len(seds))
		for i, sed := range seds {
			mags[i] = sed.MagThrough(bp)
		}
		out[name] = mags
	}
	return out
}
