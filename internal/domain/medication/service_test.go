package medication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockMedicationRepo struct {
	items map[uuid.UUID]*Medication
}

func newMockMedicationRepo() *mockMedicationRepo {
	return &mockMedicationRepo{items: make(map[uuid.UUID]*Medication)}
}

func (m *mockMedicationRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	m.items[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockMedicationRepo) Update(_ context.Context, med *Medication) error {
	if _, ok := m.items[med.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.items[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockMedicationRepo) List(_ context.Context, limit, offset int) ([]*Medication, int, error) {
	var out []*Medication
	for _, med := range m.items {
		out = append(out, med)
	}
	return out, len(out), nil
}

type mockPrescriptionRepo struct {
	items map[uuid.UUID]*Prescription
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{items: make(map[uuid.UUID]*Prescription)}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPrescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockPrescriptionRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*Prescription, int, error) {
	var out []*Prescription
	for _, p := range m.items {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func newMedicationService() *Service {
	return NewService(newMockMedicationRepo(), newMockPrescriptionRepo())
}

func TestMedicationCRUD(t *testing.T) {
	svc := newMedicationService()
	ctx := context.Background()

	m := &Medication{Name: "Sevelamer"}
	if err := svc.CreateMedication(ctx, m); err != nil {
		t.Fatalf("CreateMedication: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Fatal("expected an assigned id")
	}

	strength := "800mg"
	m.Strength = &strength
	if err := svc.UpdateMedication(ctx, m); err != nil {
		t.Fatalf("UpdateMedication: %v", err)
	}

	got, err := svc.GetMedication(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMedication: %v", err)
	}
	if got.Strength == nil || *got.Strength != "800mg" {
		t.Errorf("strength = %v", got.Strength)
	}

	if err := svc.DeleteMedication(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMedication: %v", err)
	}
	if _, err := svc.GetMedication(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateMedicationRequiresName(t *testing.T) {
	svc := newMedicationService()
	if err := svc.CreateMedication(context.Background(), &Medication{}); err == nil {
		t.Error("expected a validation error")
	}
}

func TestPrescribe(t *testing.T) {
	svc := newMedicationService()
	ctx := context.Background()

	med := &Medication{Name: "Epoetin alfa"}
	if err := svc.CreateMedication(ctx, med); err != nil {
		t.Fatal(err)
	}
	doctorID := uuid.New()

	t.Run("success", func(t *testing.T) {
		rx := &Prescription{
			PatientID:    "KC-ABC234",
			DoctorID:     doctorID,
			MedicationID: med.ID,
			Dosage:       "4000 IU",
			Frequency:    "3x weekly",
		}
		if err := svc.Prescribe(ctx, rx); err != nil {
			t.Fatalf("Prescribe: %v", err)
		}
		items, total, err := svc.ListPrescriptionsByPatient(ctx, "KC-ABC234", 20, 0)
		if err != nil || total != 1 || len(items) != 1 {
			t.Errorf("list = %d/%d, err = %v", len(items), total, err)
		}
	})

	t.Run("unknown medication", func(t *testing.T) {
		rx := &Prescription{
			PatientID: "KC-ABC234", DoctorID: doctorID,
			MedicationID: uuid.New(), Dosage: "1", Frequency: "daily",
		}
		if err := svc.Prescribe(ctx, rx); err == nil {
			t.Error("expected an error for an uncatalogued medication")
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []*Prescription{
			{DoctorID: doctorID, MedicationID: med.ID, Dosage: "1", Frequency: "daily"},
			{PatientID: "KC-ABC234", DoctorID: doctorID, MedicationID: med.ID, Frequency: "daily"},
			{PatientID: "KC-ABC234", DoctorID: doctorID, MedicationID: med.ID, Dosage: "1"},
		}
		for i, rx := range cases {
			if err := svc.Prescribe(ctx, rx); err == nil {
				t.Errorf("case %d: expected a validation error", i)
			}
		}
	})
}

func TestRevoke(t *testing.T) {
	svc := newMedicationService()
	ctx := context.Background()

	med := &Medication{Name: "Calcitriol"}
	if err := svc.CreateMedication(ctx, med); err != nil {
		t.Fatal(err)
	}
	rx := &Prescription{
		PatientID: "KC-ABC234", DoctorID: uuid.New(),
		MedicationID: med.ID, Dosage: "0.25mcg", Frequency: "daily",
	}
	if err := svc.Prescribe(ctx, rx); err != nil {
		t.Fatal(err)
	}

	if err := svc.Revoke(ctx, rx.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := svc.Revoke(ctx, rx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second revoke err = %v, want ErrNotFound", err)
	}
}
