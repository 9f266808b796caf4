package medication

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	medications   MedicationRepository
	prescriptions PrescriptionRepository
}

func NewService(medications MedicationRepository, prescriptions PrescriptionRepository) *Service {
	return &Service{medications: medications, prescriptions: prescriptions}
}

// -- Medication catalog --

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.medications.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := s.medications.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	err := s.medications.Update(ctx, m)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	err := s.medications.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListMedications(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return s.medications.List(ctx, limit, offset)
}

// -- Prescriptions --

// Prescribe records a prescription. The prescribing doctor comes from the
// session, the medication must exist in the catalog.
func (s *Service) Prescribe(ctx context.Context, p *Prescription) error {
	if p.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.Frequency == "" {
		return fmt.Errorf("frequency is required")
	}
	if _, err := s.GetMedication(ctx, p.MedicationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("unknown medication %s", p.MedicationID)
		}
		return err
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Revoke removes a prescription outright; there is no amendment flow.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	err := s.prescriptions.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListPrescriptionsByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}
