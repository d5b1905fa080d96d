package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rxledger/rxledger/internal/domain/prescription"
	"github.com/rxledger/rxledger/internal/platform/ids"
)

var (
	// ErrNoPendingMedicine is returned when every line on the prescription
	// has already been dispensed.
	ErrNoPendingMedicine = errors.New("prescription has no pending medicines")
	// ErrPrescriptionNotFound is returned when the order references an
	// unknown prescription.
	ErrPrescriptionNotFound = errors.New("prescription not found")
	// ErrNotFound is returned by lookups that match no order.
	ErrNotFound = errors.New("order not found")
)

// PrescriptionDirectory is the slice of the prescription ledger this
// package needs.
type PrescriptionDirectory interface {
	GetByID(ctx context.Context, id string) (*prescription.Prescription, error)
}

type Service struct {
	repo          Repository
	prescriptions PrescriptionDirectory
}

func NewService(repo Repository, prescriptions PrescriptionDirectory) *Service {
	return &Service{repo: repo, prescriptions: prescriptions}
}

// Place creates a pending order for a prescription. The prescription must
// exist and still have at least one pending medicine line.
func (s *Service) Place(ctx context.Context, o *Order) error {
	if o.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if o.PharmacyID == "" {
		return fmt.Errorf("pharmacy id is required")
	}
	if o.PrescriptionID == "" {
		return fmt.Errorf("prescription id is required")
	}

	p, err := s.prescriptions.GetByID(ctx, o.PrescriptionID)
	if err != nil {
		if errors.Is(err, prescription.ErrNotFound) {
			return ErrPrescriptionNotFound
		}
		return err
	}
	if !p.HasPendingLine() {
		return ErrNoPendingMedicine
	}

	o.ID = ids.New("order")
	o.Status = StatusPending
	o.PlacedAt = time.Now()
	return s.repo.Create(ctx, o)
}

// ProcessPendingForPrescription marks the oldest pending order referencing
// the prescription as processed and returns its id. It returns "" when no
// pending order exists; dispensing without an order is normal.
func (s *Service) ProcessPendingForPrescription(ctx context.Context, prescriptionID string) (string, error) {
	o, err := s.repo.GetPendingByPrescription(ctx, prescriptionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	o.Status = StatusProcessed
	if err := s.repo.Update(ctx, o); err != nil {
		return "", err
	}
	return o.ID, nil
}

func (s *Service) ListPendingByPharmacy(ctx context.Context, pharmacyID string) ([]*Order, error) {
	return s.repo.ListPendingByPharmacy(ctx, pharmacyID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Order, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
