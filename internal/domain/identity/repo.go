package identity

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	// GetPatientByAnyPhone matches a patient on their own phone or their
	// caregiver's phone.
	GetPatientByAnyPhone(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByRole(ctx context.Context, role Role, limit, offset int) ([]*User, int, error)
}
