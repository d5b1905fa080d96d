package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rxledger/rxledger/internal/platform/ids"
)

var (
	// ErrEmptyMedicineName is returned when a prescription carries a line
	// without a medicine name.
	ErrEmptyMedicineName = errors.New("medicine name is required")
	// ErrNotFound is returned when no prescription matches the id.
	ErrNotFound = errors.New("prescription not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Issue records a new prescription. Every line must carry a name; the total
// quantity is recomputed as (morning+afternoon+night)*days regardless of
// what the caller sent, and every line starts pending.
func (s *Service) Issue(ctx context.Context, p *Prescription) error {
	if p.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if p.DoctorID == "" {
		return fmt.Errorf("doctor id is required")
	}
	if len(p.Medicines) == 0 {
		return fmt.Errorf("at least one medicine is required")
	}
	for i := range p.Medicines {
		m := &p.Medicines[i]
		if m.Name == "" {
			return ErrEmptyMedicineName
		}
		if m.Morning < 0 || m.Afternoon < 0 || m.Night < 0 || m.Days < 0 {
			return fmt.Errorf("dose pattern must not be negative")
		}
		if m.Timing != BeforeFood && m.Timing != AfterFood {
			m.Timing = AfterFood
		}
		m.Total = (m.Morning + m.Afternoon + m.Night) * m.Days
		m.Status = LinePending
	}

	p.ID = ids.New("pres")
	p.IssuedAt = time.Now()
	return s.repo.Create(ctx, p)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns the patient's prescriptions, most recent first.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// MarkLineDispensed flips a pending medicine line to dispensed. The caller
// is expected to run this inside the same transaction as the dispense log
// insert.
func (s *Service) MarkLineDispensed(ctx context.Context, prescriptionID, medicineName string) error {
	return s.repo.MarkLineDispensed(ctx, prescriptionID, medicineName)
}
