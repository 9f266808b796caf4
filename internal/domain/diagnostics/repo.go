package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

type LabResultRepository interface {
	Create(ctx context.Context, r *LabResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*LabResult, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error)
	CountByFlag(ctx context.Context) (map[Flag]int, error)
}
