package identity

import "time"

// Role classifies every account in the directory.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
	RolePatient  Role = "patient"
	RolePharmacy Role = "pharmacy"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RolePharmacy:
		return true
	}
	return false
}

// Status tracks admin review of professional registrations. Patients are
// provisioned verified.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// User is a directory entry. Caregiver fields only apply to patients; the
// caregiver phone acts as a secondary lookup key so a caregiver can present
// their own number at a pharmacy.
type User struct {
	ID                    string     `json:"id"`
	Phone                 string     `json:"phone"`
	Name                  string     `json:"name"`
	Role                  Role       `json:"role"`
	Status                Status     `json:"status"`
	Email                 *string    `json:"email,omitempty"`
	CaregiverName         *string    `json:"caregiverName,omitempty"`
	CaregiverPhone        *string    `json:"caregiverPhone,omitempty"`
	CaregiverRelationship *string    `json:"caregiverRelationship,omitempty"`
	VerifiedAt            *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}
