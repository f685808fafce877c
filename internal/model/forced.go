package model

import "time"

// Object is a detected source in the forced-photometry database.
type Object struct {
	ObjectID int64   `gorm:"primaryKey;column:object_id"`
	RA       float64 `gorm:"column:ra;not null"`
	Dec      float64 `gorm:"column:dec;not null"`
}

// CcdVisit is one detector exposure within a visit.
type CcdVisit struct {
	CcdVisitID int64     `gorm:"primaryKey;column:ccd_visit_id"`
	VisitID    int64     `gorm:"column:visit_id;index;not null"`
	FilterName string    `gorm:"column:filter_name;size:8;not null"`
	ObsStart   time.Time `gorm:"column:obs_start;index;not null"`
}

// ForcedSource is a forced flux measurement of an object on one ccd visit.
type ForcedSource struct {
	ObjectID     int64   `gorm:"primaryKey;column:object_id"`
	CcdVisitID   int64   `gorm:"primaryKey;column:ccd_visit_id"`
	PsfFlux      float64 `gorm:"column:psf_flux;not null"`
	PsfFluxSigma float64 `gorm:"column:psf_flux_sigma;not null"`

	// Associations
	Object   Object   `gorm:"foreignKey:ObjectID"`
	CcdVisit CcdVisit `gorm:"foreignKey:CcdVisitID"`
}
