package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. A user's role is fixed at
// registration and never changes.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleStaff:
		return true
	}
	return false
}

// Clinician reports whether the role belongs to clinic personnel.
func (r Role) Clinician() bool {
	return r == RoleDoctor || r == RoleStaff
}

// User maps to the app_user table.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	// PatientID links a patient login to its patient record. Set only
	// when Role is patient.
	PatientID  *string   `db:"patient_id" json:"patient_id,omitempty"`
	Specialty  *string   `db:"specialty" json:"specialty,omitempty"`
	Department *string   `db:"department" json:"department,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table. PatientID is the human-readable
// clinic identifier ("KC-" prefix), not a surrogate key.
type Patient struct {
	PatientID        string     `db:"patient_id" json:"patient_id"`
	FullName         string     `db:"full_name" json:"full_name"`
	BirthDate        *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Email            *string    `db:"email" json:"email,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	BloodGroup       *string    `db:"blood_group" json:"blood_group,omitempty"`
	CKDStage         *int       `db:"ckd_stage" json:"ckd_stage,omitempty"`
	DialysisDays     *string    `db:"dialysis_days" json:"dialysis_days,omitempty"`
	DryWeightKg      *float64   `db:"dry_weight_kg" json:"dry_weight_kg,omitempty"`
	Allergies        *string    `db:"allergies" json:"allergies,omitempty"`
	Comorbidities    *string    `db:"comorbidities" json:"comorbidities,omitempty"`
	AssignedDoctorID *uuid.UUID `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
