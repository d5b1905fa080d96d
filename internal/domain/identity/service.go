package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rxledger/rxledger/internal/platform/ids"
)

var (
	// ErrDuplicatePhone is returned when a professional registers with a
	// phone number already present in the directory.
	ErrDuplicatePhone = errors.New("phone number already registered")
	// ErrNotFound is returned by lookups that match no user.
	ErrNotFound = errors.New("user not found")
	// ErrUnverifiedAccount is returned when a professional acts before an
	// admin has verified their registration.
	ErrUnverifiedAccount = errors.New("account not verified")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterProfessional enrolls a doctor or pharmacy in pending status.
// Admin review moves them to verified or rejected.
func (s *Service) RegisterProfessional(ctx context.Context, u *User) error {
	if u.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if u.Role != RoleDoctor && u.Role != RolePharmacy {
		return fmt.Errorf("role must be doctor or pharmacy, got %q", u.Role)
	}

	if existing, err := s.repo.GetByPhone(ctx, u.Phone); err == nil && existing != nil {
		return ErrDuplicatePhone
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	u.ID = ids.New(string(u.Role))
	u.Status = StatusPending
	u.VerifiedAt = nil
	u.CreatedAt = time.Now()
	return s.repo.Create(ctx, u)
}

// SetStatus applies an admin verification decision. An unknown id is a
// no-op rather than an error so replayed decisions stay harmless.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	u.Status = status
	if status == StatusVerified {
		now := time.Now()
		u.VerifiedAt = &now
	} else {
		u.VerifiedAt = nil
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindOrCreatePatient resolves a phone number to a patient, matching the
// patient's own phone or their caregiver's phone. Unknown numbers are
// auto-provisioned as verified patients so walk-ins never stall at the
// counter; the display name carries the last four digits until the real
// name is captured.
func (s *Service) FindOrCreatePatient(ctx context.Context, phone string) (*User, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	p, err := s.repo.GetPatientByAnyPhone(ctx, phone)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	last4 := phone
	if len(phone) > 4 {
		last4 = phone[len(phone)-4:]
	}
	cgName, cgPhone, cgRel := "Default Caregiver", "9999999999", "Family"
	now := time.Now()
	p = &User{
		ID:                    ids.New("p"),
		Phone:                 phone,
		Name:                  "Patient " + last4,
		Role:                  RolePatient,
		Status:                StatusVerified,
		CaregiverName:         &cgName,
		CaregiverPhone:        &cgPhone,
		CaregiverRelationship: &cgRel,
		VerifiedAt:            &now,
		CreatedAt:             now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateCaregiver replaces a patient's caregiver details. Non-patient ids
// are a no-op.
func (s *Service) UpdateCaregiver(ctx context.Context, patientID, name, phone, relationship string) (*User, error) {
	if name == "" || phone == "" {
		return nil, fmt.Errorf("caregiver name and phone are required")
	}

	u, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if u.Role != RolePatient {
		return nil, nil
	}

	u.CaregiverName = &name
	u.CaregiverPhone = &phone
	u.CaregiverRelationship = &relationship
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RequireVerified checks that a doctor or pharmacy account has passed
// admin verification. Patients and admins are never held at this gate.
func (s *Service) RequireVerified(ctx context.Context, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if (u.Role == RoleDoctor || u.Role == RolePharmacy) && u.Status != StatusVerified {
		return ErrUnverifiedAccount
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return s.repo.GetByPhone(ctx, phone)
}

func (s *Service) ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error) {
	if !role.Valid() {
		return nil, 0, fmt.Errorf("invalid role %q", role)
	}
	return s.repo.ListByRole(ctx, role, limit, offset)
}
