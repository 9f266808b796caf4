package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// Flag classifies a lab value against its reference range.
type Flag string

const (
	FlagNormal   Flag = "normal"
	FlagLow      Flag = "low"
	FlagHigh     Flag = "high"
	FlagCritical Flag = "critical"
)

func (f Flag) Valid() bool {
	switch f {
	case FlagNormal, FlagLow, FlagHigh, FlagCritical:
		return true
	}
	return false
}

type LabResult struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      string     `db:"patient_id" json:"patient_id"`
	TestName       string     `db:"test_name" json:"test_name"`
	Value          string     `db:"value" json:"value"`
	Unit           *string    `db:"unit" json:"unit,omitempty"`
	ReferenceRange *string    `db:"reference_range" json:"reference_range,omitempty"`
	Flag           Flag       `db:"flag" json:"flag"`
	ResultedAt     time.Time  `db:"resulted_at" json:"resulted_at"`
	OrderedByID    *uuid.UUID `db:"ordered_by_id" json:"ordered_by_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// FlagReport is the clinic-wide breakdown of results by flag.
type FlagReport struct {
	Total    int `json:"total"`
	Normal   int `json:"normal"`
	Low      int `json:"low"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}
