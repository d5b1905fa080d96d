package audit

import "context"

type Repository interface {
	Append(ctx context.Context, l *EmergencyAccessLog) error
	List(ctx context.Context, limit, offset int) ([]*EmergencyAccessLog, int, error)
	ListByPatient(ctx context.Context, patientID string) ([]*EmergencyAccessLog, error)
}
