package model

// TruthFlux is one simulated flux measurement for a (star, visit) pair.
// Rows are appended while iterating visits and written verbatim to the
// output sqlite table.
type TruthFlux struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	UniqueID      int64   `gorm:"column:unique_id;index;not null"`
	RA            float64 `gorm:"column:ra;not null"`
	Dec           float64 `gorm:"column:dec;not null"`
	Filter        string  `gorm:"column:filter;size:8;not null"`
	TrueFlux      float64 `gorm:"column:true_flux;not null"`
	TrueFluxError float64 `gorm:"column:true_flux_error;not null"`
	ObsHistID     int64   `gorm:"column:obs_hist_id;index;not null"`
}
