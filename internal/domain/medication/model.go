package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a catalog entry, managed by staff.
type Medication struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	GenericName *string   `db:"generic_name" json:"generic_name,omitempty"`
	Form        *string   `db:"form" json:"form,omitempty"`
	Strength    *string   `db:"strength" json:"strength,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Prescription ties a catalog medication to a patient. Only doctors write
// prescriptions; prescriptions are never edited, only created and revoked.
type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    string    `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Frequency    string    `db:"frequency" json:"frequency"`
	DurationDays *int      `db:"duration_days" json:"duration_days,omitempty"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
