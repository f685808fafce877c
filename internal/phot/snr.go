package phot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
)

// Params are the photometric parameters of the instrument.
type Params struct {
	ExpTime float64 // seconds per exposure
	NExp    int     // exposures per visit
	EffArea float64 // effective collecting area, cm^2
	Gain    float64 // electrons per ADU
}

// DefaultParams returns the survey defaults: 2x15s visits on a 6.423 m
// effective-diameter aperture with gain 2.3.
func DefaultParams() Params {
	radiusCm := 6.423 / 2 * 100
	return Params{
		ExpTime: 15,
		NExp:    2,
		EffArea: math.Pi * radiusCm * radiusCm,
		Gain:    2.3,
	}
}

// ADU computes the instrumental counts of the SED through a bandpass for
// one visit: the photon-count integral scaled by collecting area, exposure
// time and gain.
func (s *Sed) ADU(bp *Bandpass, params Params) float64 {
	// photons/cm^2/s/nm = f_lambda * lambda / (h*c)
	integrand := make([]float64, len(bp.Wavelen))
	for i, w := range bp.Wavelen {
		lambdaCm := w * nmToCm
		integrand[i] = s.flambdaAt(w) * bp.Sb[i] * lambdaCm / (planckErgS * lightspeedCm)
	}
	photonRate := integrate.Trapezoidal(bp.Wavelen, integrand)
	return photonRate * params.EffArea * params.ExpTime * float64(params.NExp) / params.Gain
}

// Gamma computes the gamma parameter of the m5 signal-to-noise relation for
// a bandpass at five-sigma depth m5: a flat-spectrum source at m5 is
// synthesized and gamma follows from its electron counts.
func Gamma(bp *Bandpass, m5 float64, params Params) (float64, error) {
	flat := NewFlatSed(bp.Wavelen, m5)
	counts := flat.ADU(bp, params) * params.Gain
	if counts <= 0 {
		return 0, fmt.Errorf("phot: non-positive counts for m5=%g in %s", m5, bp.Name)
	}
	return 0.04 - 1.0/counts, nil
}

// SNR computes the signal-to-noise ratio of a source of the given magnitude
// against the five-sigma depth m5:
//
//	x = 10^(0.4*(mag-m5))
//	snr = 1 / sqrt((0.04-gamma)*x + gamma*x^2)
func SNR(mag float64, bp *Bandpass, m5 float64, params Params) (float64, error) {
	gamma, err := Gamma(bp, m5, params)
	if err != nil {
		return 0, err
	}
	x := math.Pow(10, 0.4*(mag-m5))
	return 1.0 / math.Sqrt((0.04-gamma)*x+gamma*x*x), nil
}

// FluxFromMag converts a magnitude to flux on the survey's 22.5-referenced
// scale: flux = 10^(-0.4*(mag-22.5)).
func FluxFromMag(mag float64) float64 {
	return math.Pow(10, -0.4*(mag-22.5))
}
