package scheduling

import (
	"context"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Appointment, int, error)
}

type DialysisSessionRepository interface {
	Create(ctx context.Context, s *DialysisSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*DialysisSession, error)
	Update(ctx context.Context, s *DialysisSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*DialysisSession, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*DialysisSession, int, error)
}
