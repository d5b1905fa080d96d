package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id string) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error)
	// MarkLineDispensed flips a pending medicine line to dispensed. Lines
	// already dispensed are left untouched.
	MarkLineDispensed(ctx context.Context, prescriptionID, medicineName string) error
}
