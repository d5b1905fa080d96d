package dispense

import "context"

type Repository interface {
	// Create inserts the log. A log already covering the same
	// (prescription, medicine) pair fails with ErrAlreadyDispensed.
	Create(ctx context.Context, l *DispenseLog) error
	SetOrderID(ctx context.Context, id, orderID string) error
	ListByPatient(ctx context.Context, patientID string) ([]*DispenseLog, error)
}
