package phot

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"
)

// Physical constants in cgs, wavelengths in nanometers throughout.
const (
	lightspeedNm = 2.99792458e17 // nm/s
	lightspeedCm = 2.99792458e10 // cm/s
	planckErgS   = 6.62607015e-27
	nmToCm       = 1e-7
	abZeroPoint  = -48.6
	// reference wavelength for magnitude normalization
	magNormWavelen = 500.0
)

// Sed is a spectral energy distribution: f_lambda in erg/cm^2/s/nm sampled
// on a wavelength grid in nm.
type Sed struct {
	Wavelen []float64
	Flambda []float64
}

// LoadSed reads a two-column (wavelength, flambda) SED file, transparently
// decompressing .gz files.
func LoadSed(path string) (*Sed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phot: open sed %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("phot: gunzip sed %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	sed := &Sed{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("phot: malformed sed line %q in %s", line, path)
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("phot: bad wavelength in %s: %w", path, err)
		}
		fl, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("phot: bad flambda in %s: %w", path, err)
		}
		sed.Wavelen = append(sed.Wavelen, w)
		sed.Flambda = append(sed.Flambda, fl)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("phot: read sed %s: %w", path, err)
	}
	if len(sed.Wavelen) < 2 {
		return nil, fmt.Errorf("phot: sed %s has fewer than two samples", path)
	}
	return sed, nil
}

// NewFlatSed returns an SED with constant f_nu corresponding to AB magnitude
// mag, sampled on the given wavelength grid.
func NewFlatSed(wavelen []float64, mag float64) *Sed {
	fnu := math.Pow(10, -0.4*(mag-abZeroPoint))
	sed := &Sed{
		Wavelen: append([]float64(nil), wavelen...),
		Flambda: make([]float64, len(wavelen)),
	}
	for i, w := range wavelen {
		// f_lambda = f_nu * c / lambda^2
		sed.Flambda[i] = fnu * lightspeedNm / (w * w)
	}
	return sed
}

// flambdaAt linearly interpolates f_lambda at wavelength w, zero outside the
// sampled range.
func (s *Sed) flambdaAt(w float64) float64 {
	n := len(s.Wavelen)
	if n == 0 || w < s.Wavelen[0] || w > s.Wavelen[n-1] {
		return 0
	}
	// binary search for the bracketing interval
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.Wavelen[mid] <= w {
			lo = mid
		} else {
			hi = mid
		}
	}
	w0, w1 := s.Wavelen[lo], s.Wavelen[hi]
	if w1 == w0 {
		return s.Flambda[lo]
	}
	t := (w - w0) / (w1 - w0)
	return s.Flambda[lo] + t*(s.Flambda[hi]-s.Flambda[lo])
}

// fnuAt returns f_nu at wavelength w in erg/cm^2/s/Hz.
func (s *Sed) fnuAt(w float64) float64 {
	return s.flambdaAt(w) * w * w / lightspeedNm
}

// MagThrough computes the AB magnitude of the SED through a bandpass.
func (s *Sed) MagThrough(bp *Bandpass) float64 {
	integrand := make([]float64, len(bp.Wavelen))
	for i, w := range bp.Wavelen {
		integrand[i] = s.fnuAt(w) * bp.phi[i]
	}
	flux := integrate.Trapezoidal(bp.Wavelen, integrand)
	if flux <= 0 {
		return math.Inf(1)
	}
	return -2.5*math.Log10(flux) + abZeroPoint
}

// NormalizeToMagNorm rescales the SED so its monochromatic AB magnitude at
// the 500 nm reference wavelength equals magNorm.
func (s *Sed) NormalizeToMagNorm(magNorm float64) error {
	fnu := s.fnuAt(magNormWavelen)
	if fnu <= 0 {
		return fmt.Errorf("phot: sed has no flux at %g nm, cannot normalize", magNormWavelen)
	}
	current := -2.5*math.Log10(fnu) + abZeroPoint
	scale := math.Pow(10, -0.4*(magNorm-current))
	for i := range s.Flambda {
		s.Flambda[i] *= scale
	}
	return nil
}
