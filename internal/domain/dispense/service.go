package dispense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rxledger/rxledger/internal/domain/prescription"
	"github.com/rxledger/rxledger/internal/platform/db"
	"github.com/rxledger/rxledger/internal/platform/ids"
)

var (
	// ErrPrescriptionNotFound is returned when the dispense references an
	// unknown prescription.
	ErrPrescriptionNotFound = errors.New("prescription not found")
	// ErrAlreadyDispensed is returned when the medicine was already handed
	// over for this prescription. The first dispense stands untouched.
	ErrAlreadyDispensed = errors.New("medicine already dispensed for this prescription")
	// ErrMedicineNotOnPrescription is returned when the named medicine does
	// not appear on the prescription.
	ErrMedicineNotOnPrescription = errors.New("medicine not on prescription")
)

// PrescriptionLedger is the slice of the prescription ledger this package
// needs.
type PrescriptionLedger interface {
	GetByID(ctx context.Context, id string) (*prescription.Prescription, error)
	MarkLineDispensed(ctx context.Context, prescriptionID, medicineName string) error
}

// OrderProcessor marks the pending order behind a dispense as processed.
type OrderProcessor interface {
	ProcessPendingForPrescription(ctx context.Context, prescriptionID string) (string, error)
}

// Request identifies what is being dispensed and by whom.
type Request struct {
	PrescriptionID string
	MedicineName   string
	PharmacyID     string
	PharmacyName   string
	Emergency      bool
}

type Service struct {
	repo          Repository
	prescriptions PrescriptionLedger
	orders        OrderProcessor
	runner        db.Runner
}

func NewService(repo Repository, prescriptions PrescriptionLedger, orders OrderProcessor, runner db.Runner) *Service {
	return &Service{repo: repo, prescriptions: prescriptions, orders: orders, runner: runner}
}

// Dispense records a medicine handover. The log insert, the prescription
// line flip, and the order side effect commit or roll back as one unit.
// Repeat calls for the same (prescription, medicine) pair fail with
// ErrAlreadyDispensed and change nothing.
func (s *Service) Dispense(ctx context.Context, req Request) (*DispenseLog, error) {
	if req.PrescriptionID == "" || req.MedicineName == "" {
		return nil, fmt.Errorf("prescription id and medicine name are required")
	}
	if req.PharmacyID == "" {
		return nil, fmt.Errorf("pharmacy id is required")
	}

	var log *DispenseLog
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.prescriptions.GetByID(ctx, req.PrescriptionID)
		if err != nil {
			if errors.Is(err, prescription.ErrNotFound) {
				return ErrPrescriptionNotFound
			}
			return err
		}

		var line *prescription.Medicine
		for i := range p.Medicines {
			if p.Medicines[i].Name == req.MedicineName {
				line = &p.Medicines[i]
				break
			}
		}
		if line == nil {
			return ErrMedicineNotOnPrescription
		}

		log = &DispenseLog{
			ID:             ids.New("disp"),
			PrescriptionID: p.ID,
			PatientID:      p.PatientID,
			PharmacyID:     req.PharmacyID,
			PharmacyName:   req.PharmacyName,
			DoctorID:       p.DoctorID,
			MedicineName:   line.Name,
			Brand:          line.Brand,
			Quantity:       line.Total,
			DispensedAt:    time.Now(),
			Emergency:      req.Emergency,
		}
		if err := s.repo.Create(ctx, log); err != nil {
			return err
		}

		if err := s.prescriptions.MarkLineDispensed(ctx, p.ID, line.Name); err != nil {
			return err
		}

		orderID, err := s.orders.ProcessPendingForPrescription(ctx, p.ID)
		if err != nil {
			return err
		}
		if orderID != "" {
			log.OrderID = &orderID
			if err := s.repo.SetOrderID(ctx, log.ID, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*DispenseLog, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
