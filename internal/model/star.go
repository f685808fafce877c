package model

// Star is one record from the simulation "truth" star catalog, after the
// fixed column mapping has been applied (angles in radians, proper motion in
// rad/yr, parallax in rad).
type Star struct {
	ID              int64
	RA              float64
	Dec             float64
	GalacticL       float64
	GalacticB       float64
	ProperMotionRA  float64
	ProperMotionDec float64
	Parallax        float64
	GalacticAv      float64
	RadialVelocity  float64
	VarParamStr     string
	SedFilename     string
	MagNorm         float64
	GMag            float64
}
