package order

import "context"

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	// ListPendingByPharmacy is the pharmacy work queue: pending orders only.
	ListPendingByPharmacy(ctx context.Context, pharmacyID string) ([]*Order, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Order, error)
	// GetPendingByPrescription returns the oldest pending order referencing
	// the prescription, or ErrNotFound.
	GetPendingByPrescription(ctx context.Context, prescriptionID string) (*Order, error)
}
