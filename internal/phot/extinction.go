package phot

import "math"

// ReddenCCM applies Milky Way dust extinction to the SED in place using the
// Cardelli, Clayton & Mathis (1989) law with R_V = 3.1. av is the V-band
// extinction in magnitudes.
func (s *Sed) ReddenCCM(av float64) {
	if av == 0 {
		return
	}
	const rv = 3.1
	for i, w := range s.Wavelen {
		x := 1000.0 / w // inverse microns
		a, b := ccmCoeffs(x)
		alambda := av * (a + b/rv)
		s.Flambda[i] *= math.Pow(10, -0.4*alambda)
	}
}

// ccmCoeffs returns the CCM89 a(x), b(x) coefficients for x in inverse
// microns, covering the infrared and optical/NIR regimes the survey
// bandpasses span. Outside the fitted range the nearest boundary value is
// used.
func ccmCoeffs(x float64) (float64, float64) {
	switch {
	case x < 0.3:
		x = 0.3
		fallthrough
	case x <= 1.1:
		// infrared
		a := 0.574 * math.Pow(x, 1.61)
		b := -0.527 * math.Pow(x, 1.61)
		return a, b
	case x <= 3.3:
		// optical / NIR polynomial fit
		y := x - 1.82
		a := 1 + y*(0.17699+y*(-0.50447+y*(-0.02427+y*(0.72085+y*(0.01979+y*(-0.77530+y*0.32999))))))
		b := y * (1.41338 + y*(2.28305+y*(1.07233+y*(-5.38434+y*(-0.62251+y*(5.30260+y*-2.09002))))))
		return a, b
	default:
		// clamp at the blue edge of the optical fit
		return ccmCoeffs(3.3)
	}
}
