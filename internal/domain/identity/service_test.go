package identity

import (
	"context"
	"strings"
	"testing"
)

// -- Mock Repository --

type mockRepo struct {
	users map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByPhone(_ context.Context, phone string) (*User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetPatientByAnyPhone(_ context.Context, phone string) (*User, error) {
	for _, u := range m.users {
		if u.Role != RolePatient {
			continue
		}
		if u.Phone == phone {
			return u, nil
		}
		if u.CaregiverPhone != nil && *u.CaregiverPhone == phone {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) ListByRole(_ context.Context, role Role, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, len(result), nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

// -- Tests --

func TestRegisterProfessional(t *testing.T) {
	svc := newTestService()

	u := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	if err := svc.RegisterProfessional(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if !strings.HasPrefix(u.ID, "doctor_") {
		t.Errorf("expected doctor_ prefix, got %s", u.ID)
	}
	if u.Status != StatusPending {
		t.Errorf("expected pending status, got %s", u.Status)
	}
	if u.VerifiedAt != nil {
		t.Error("expected no verified timestamp on registration")
	}
}

func TestRegisterProfessional_DuplicatePhone(t *testing.T) {
	svc := newTestService()

	first := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	if err := svc.RegisterProfessional(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &User{Phone: "9876543210", Name: "City Pharmacy", Role: RolePharmacy}
	if err := svc.RegisterProfessional(context.Background(), second); err != ErrDuplicatePhone {
		t.Errorf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestRegisterProfessional_RejectsNonProfessionalRoles(t *testing.T) {
	svc := newTestService()

	for _, role := range []Role{RolePatient, RoleAdmin, Role("nurse")} {
		u := &User{Phone: "1234567890", Name: "X", Role: role}
		if err := svc.RegisterProfessional(context.Background(), u); err == nil {
			t.Errorf("expected error for role %q", role)
		}
	}
}

func TestSetStatus_Verify(t *testing.T) {
	svc := newTestService()

	u := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	svc.RegisterProfessional(context.Background(), u)

	got, err := svc.SetStatus(context.Background(), u.ID, StatusVerified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusVerified {
		t.Errorf("expected verified, got %s", got.Status)
	}
	if got.VerifiedAt == nil {
		t.Error("expected verified timestamp")
	}
}

func TestSetStatus_Reject(t *testing.T) {
	svc := newTestService()

	u := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	svc.RegisterProfessional(context.Background(), u)

	got, err := svc.SetStatus(context.Background(), u.ID, StatusRejected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusRejected {
		t.Errorf("expected rejected, got %s", got.Status)
	}
	if got.VerifiedAt != nil {
		t.Error("expected no verified timestamp on rejection")
	}
}

func TestSetStatus_UnknownIDIsNoOp(t *testing.T) {
	svc := newTestService()

	got, err := svc.SetStatus(context.Background(), "doctor_999", StatusVerified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil user for unknown id, got %+v", got)
	}
}

func TestFindOrCreatePatient_CreatesVerifiedPatient(t *testing.T) {
	svc := newTestService()

	p, err := svc.FindOrCreatePatient(context.Background(), "9998887777")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != RolePatient {
		t.Errorf("expected patient role, got %s", p.Role)
	}
	if p.Status != StatusVerified {
		t.Errorf("expected auto-provisioned patient to be verified, got %s", p.Status)
	}
	if p.Name != "Patient 7777" {
		t.Errorf("expected placeholder name Patient 7777, got %q", p.Name)
	}
	if p.CaregiverName == nil || *p.CaregiverName != "Default Caregiver" {
		t.Errorf("expected placeholder caregiver, got %+v", p.CaregiverName)
	}
	if p.CaregiverPhone == nil || *p.CaregiverPhone != "9999999999" {
		t.Errorf("expected placeholder caregiver phone, got %+v", p.CaregiverPhone)
	}
}

func TestFindOrCreatePatient_ReturnsSameIDOnRepeat(t *testing.T) {
	svc := newTestService()

	first, err := svc.FindOrCreatePatient(context.Background(), "9998887777")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.FindOrCreatePatient(context.Background(), "9998887777")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same patient on repeat lookup, got %s and %s", first.ID, second.ID)
	}
}

func TestFindOrCreatePatient_MatchesCaregiverPhone(t *testing.T) {
	svc := newTestService()

	p, _ := svc.FindOrCreatePatient(context.Background(), "9998887777")
	updated, err := svc.UpdateCaregiver(context.Background(), p.ID, "Asha", "8887776666", "Daughter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected caregiver update to apply")
	}

	viaCaregiver, err := svc.FindOrCreatePatient(context.Background(), "8887776666")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if viaCaregiver.ID != p.ID {
		t.Errorf("expected caregiver phone to resolve to same patient, got %s want %s", viaCaregiver.ID, p.ID)
	}
}

func TestUpdateCaregiver_NonPatientIsNoOp(t *testing.T) {
	svc := newTestService()

	d := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	svc.RegisterProfessional(context.Background(), d)

	got, err := svc.UpdateCaregiver(context.Background(), d.ID, "Asha", "8887776666", "Daughter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected no-op for non-patient id")
	}

	got, err = svc.UpdateCaregiver(context.Background(), "p_missing", "Asha", "8887776666", "Daughter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected no-op for unknown id")
	}
}

func TestRequireVerified(t *testing.T) {
	svc := newTestService()

	u := &User{Phone: "9876543210", Name: "Dr. Rao", Role: RoleDoctor}
	if err := svc.RegisterProfessional(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.RequireVerified(context.Background(), u.ID); err != ErrUnverifiedAccount {
		t.Errorf("expected ErrUnverifiedAccount for pending doctor, got %v", err)
	}

	if _, err := svc.SetStatus(context.Background(), u.ID, StatusVerified); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RequireVerified(context.Background(), u.ID); err != nil {
		t.Errorf("expected verified doctor to pass, got %v", err)
	}

	patient, err := svc.FindOrCreatePatient(context.Background(), "9998887777")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RequireVerified(context.Background(), patient.ID); err != nil {
		t.Errorf("expected patient to pass regardless of gate, got %v", err)
	}

	if err := svc.RequireVerified(context.Background(), "doctor_missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestListByRole_InvalidRole(t *testing.T) {
	svc := newTestService()
	if _, _, err := svc.ListByRole(context.Background(), Role("wizard"), 20, 0); err == nil {
		t.Error("expected error for invalid role")
	}
}
