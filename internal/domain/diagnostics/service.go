package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	results LabResultRepository
	now     func() time.Time
}

func NewService(results LabResultRepository) *Service {
	return &Service{results: results, now: time.Now}
}

func (s *Service) RecordResult(ctx context.Context, lr *LabResult) error {
	if lr.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if lr.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if lr.Value == "" {
		return fmt.Errorf("value is required")
	}
	if lr.Flag == "" {
		lr.Flag = FlagNormal
	}
	if !lr.Flag.Valid() {
		return fmt.Errorf("invalid flag: %s", lr.Flag)
	}
	if lr.ResultedAt.IsZero() {
		lr.ResultedAt = s.now()
	}
	return s.results.Create(ctx, lr)
}

func (s *Service) GetResult(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	lr, err := s.results.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return lr, err
}

func (s *Service) DeleteResult(ctx context.Context, id uuid.UUID) error {
	err := s.results.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListResults(ctx context.Context, limit, offset int) ([]*LabResult, int, error) {
	return s.results.List(ctx, limit, offset)
}

func (s *Service) ListResultsByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error) {
	return s.results.ListByPatient(ctx, patientID, limit, offset)
}

// FlagReport aggregates the clinic's results by flag so doctors can spot
// how many criticals are outstanding.
func (s *Service) FlagReport(ctx context.Context) (*FlagReport, error) {
	counts, err := s.results.CountByFlag(ctx)
	if err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}
	report := &FlagReport{
		Normal:   counts[FlagNormal],
		Low:      counts[FlagLow],
		High:     counts[FlagHigh],
		Critical: counts[FlagCritical],
	}
	report.Total = report.Normal + report.Low + report.High + report.Critical
	return report, nil
}
