// Package models defines the vaccine catalog reference data.
package models

import (
	"strings"
	"time"

	id "vaxtrack/pkg/domain"
)

// VaccineType tags a vaccine's place in a national schedule.
type VaccineType string

const (
	VaccineTypeMandatory   VaccineType = "mandatory"
	VaccineTypeOptional    VaccineType = "optional"
	VaccineTypeRecommended VaccineType = "recommended"
)

// IsValid reports whether t is a known vaccine type.
func (t VaccineType) IsValid() bool {
	switch t {
	case VaccineTypeMandatory, VaccineTypeOptional, VaccineTypeRecommended:
		return true
	}
	return false
}

// DaysPerMonth is the month length used for all age-to-offset conversions.
const DaysPerMonth = 30

// Vaccine is immutable catalog reference data.
//
// DoseOffsets, when present, lists each dose's minimum age in days and takes
// precedence over the free-text WhenToGive description.
type Vaccine struct {
	ID           id.VaccineID
	Name         string
	Type         VaccineType
	Category     string
	TotalDoses   *int
	Frequency    string
	WhenToGive   string
	MinAgeMonths int
	MaxAgeMonths *int
	DoseOffsets  []int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DoseCount returns the number of doses in the primary series, at least 1.
func (v *Vaccine) DoseCount() int {
	if v.TotalDoses == nil || *v.TotalDoses < 1 {
		return 1
	}
	return *v.TotalDoses
}

// IsMandatory reports whether the vaccine is part of the mandatory schedule.
func (v *Vaccine) IsMandatory() bool {
	return v.Type == VaccineTypeMandatory
}

// MinAgeDays is the earliest age in days at which the first dose may be given.
func (v *Vaccine) MinAgeDays() int {
	return v.MinAgeMonths * DaysPerMonth
}

// EligibleAt reports whether a subject aged ageMonths falls inside the
// vaccine's age window.
func (v *Vaccine) EligibleAt(ageMonths int) bool {
	if v.MinAgeMonths > ageMonths {
		return false
	}
	return v.MaxAgeMonths == nil || *v.MaxAgeMonths >= ageMonths
}

// ListFilter narrows catalog listings. Zero values mean "no constraint".
type ListFilter struct {
	ActiveOnly bool
	Type       VaccineType
	Category   string
	// MaxMinAgeDays keeps vaccines whose first dose is due at or before this age.
	MaxMinAgeDays int
}

// Matches applies the filter to a single vaccine.
func (f ListFilter) Matches(v *Vaccine) bool {
	if f.ActiveOnly && !v.Active {
		return false
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
		return false
	}
	if f.MaxMinAgeDays > 0 && v.MinAgeDays() > f.MaxMinAgeDays {
		return false
	}
	return true
}
