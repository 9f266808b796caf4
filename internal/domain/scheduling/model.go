package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle of a clinic appointment. Patients
// request; clinic personnel confirm, complete, or cancel.
type AppointmentStatus string

const (
	StatusRequested AppointmentStatus = "requested"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	PatientID   string            `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	ScheduledAt time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Reason      string            `db:"reason" json:"reason"`
	Status      AppointmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// DialysisSession is a scheduled slot on a dialysis station.
type DialysisSession struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       string    `db:"patient_id" json:"patient_id"`
	StationID       string    `db:"station_id" json:"station_id"`
	StartsAt        time.Time `db:"starts_at" json:"starts_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
