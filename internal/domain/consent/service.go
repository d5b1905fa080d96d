// Package consent gates access to a patient's records. Routine access
// requires the patient's one-time consent code; emergency access skips the
// code but requires an active break-glass session and always leaves an
// audit entry.
package consent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rxledger/rxledger/internal/domain/audit"
	"github.com/rxledger/rxledger/internal/domain/identity"
	"github.com/rxledger/rxledger/internal/platform/otp"
)

// ErrInvalidConsentCode is returned when the submitted code fails
// verification.
var ErrInvalidConsentCode = errors.New("invalid consent code")

// Actor is the professional requesting access.
type Actor struct {
	ID   string
	Name string
	Role string
}

// PatientResolver maps an untrusted phone string to a patient record.
type PatientResolver interface {
	FindOrCreatePatient(ctx context.Context, phone string) (*identity.User, error)
}

// ActorGate rejects professionals whose registration is still pending.
type ActorGate interface {
	RequireVerified(ctx context.Context, id string) error
}

// EmergencyChecker gates override access against the actor's session lease.
type EmergencyChecker interface {
	Check(actorID string) error
}

// AccessRecorder appends an emergency access entry to the audit trail.
type AccessRecorder interface {
	Record(ctx context.Context, actorID, actorName, actorRole, patientID string) (*audit.EmergencyAccessLog, error)
}

type Service struct {
	verifier  otp.Verifier
	patients  PatientResolver
	actors    ActorGate
	emergency EmergencyChecker
	trail     AccessRecorder
}

func NewService(verifier otp.Verifier, patients PatientResolver, actors ActorGate, emergency EmergencyChecker, trail AccessRecorder) *Service {
	return &Service{verifier: verifier, patients: patients, actors: actors, emergency: emergency, trail: trail}
}

// VerifyConsent resolves the phone to a patient once the access is
// authorized. The non-override path checks the consent code. The override
// path checks the actor's emergency lease instead and records exactly one
// audit entry for the granted access.
func (s *Service) VerifyConsent(ctx context.Context, actor Actor, phone, code string, override bool) (*identity.User, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	role := identity.Role(actor.Role)
	if role == identity.RoleDoctor || role == identity.RolePharmacy {
		if err := s.actors.RequireVerified(ctx, actor.ID); err != nil {
			return nil, err
		}
	}

	if override {
		if err := s.emergency.Check(actor.ID); err != nil {
			return nil, err
		}
		patient, err := s.patients.FindOrCreatePatient(ctx, phone)
		if err != nil {
			return nil, err
		}
		if _, err := s.trail.Record(ctx, actor.ID, actor.Name, actor.Role, patient.ID); err != nil {
			return nil, err
		}
		return patient, nil
	}

	ch, err := s.verifier.Issue(ctx, phone)
	if err != nil {
		return nil, err
	}
	ok, err := s.verifier.Verify(ctx, ch, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidConsentCode
	}
	return s.patients.FindOrCreatePatient(ctx, phone)
}
