package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	appointments AppointmentRepository
	sessions     DialysisSessionRepository
}

func NewService(appointments AppointmentRepository, sessions DialysisSessionRepository) *Service {
	return &Service{appointments: appointments, sessions: sessions}
}

// -- Appointments --

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.Status == "" {
		a.Status = StatusRequested
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// UpdateAppointment overwrites the stored record. Concurrent updates are
// last-write-wins; the clinic accepts that trade-off.
func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	err := s.appointments.Update(ctx, a)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	err := s.appointments.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// -- Dialysis sessions --

func (s *Service) CreateSession(ctx context.Context, ds *DialysisSession) error {
	if ds.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if ds.StationID == "" {
		return fmt.Errorf("station_id is required")
	}
	if ds.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if ds.Status == "" {
		ds.Status = "scheduled"
	}
	return s.sessions.Create(ctx, ds)
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*DialysisSession, error) {
	ds, err := s.sessions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ds, err
}

func (s *Service) UpdateSession(ctx context.Context, ds *DialysisSession) error {
	if ds.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	err := s.sessions.Update(ctx, ds)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) DeleteSession(ctx context.Context, id uuid.UUID) error {
	err := s.sessions.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListSessions(ctx context.Context, limit, offset int) ([]*DialysisSession, int, error) {
	return s.sessions.List(ctx, limit, offset)
}

func (s *Service) ListSessionsByPatient(ctx context.Context, patientID string, limit, offset int) ([]*DialysisSession, int, error) {
	return s.sessions.ListByPatient(ctx, patientID, limit, offset)
}
