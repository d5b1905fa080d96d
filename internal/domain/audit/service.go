package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/rxledger/rxledger/internal/platform/ids"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an emergency access entry. Callers pass the actor snapshot
// so the trail stays readable even if the directory entry later changes.
func (s *Service) Record(ctx context.Context, actorID, actorName, actorRole, patientID string) (*EmergencyAccessLog, error) {
	if actorID == "" || patientID == "" {
		return nil, fmt.Errorf("actor id and patient id are required")
	}
	l := &EmergencyAccessLog{
		ID:         ids.New("elog"),
		ActorID:    actorID,
		ActorName:  actorName,
		ActorRole:  actorRole,
		PatientID:  patientID,
		AccessedAt: time.Now(),
	}
	if err := s.repo.Append(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*EmergencyAccessLog, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*EmergencyAccessLog, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
