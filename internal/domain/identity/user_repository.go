package identity

import (
	"context"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email within the tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// FindAll returns users for the tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]*User, int64, error)

	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// UpsertByEmail inserts the user or updates name and role of the row with
	// the same (tenant, email). The status of an existing row is only
	// overwritten when updateStatus is set. The stored row is written back
	// into user.
	UpsertByEmail(ctx context.Context, user *User, updateStatus bool) error

	// UpdateStatusWhere moves every user of role in from status to the target
	// status and returns the number of rows changed
	UpdateStatusWhere(ctx context.Context, tenantID uuid.UUID, from, to UserStatus, role Role) (int64, error)

	// Count returns the total number of users for the tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	shared.Filter

	Role   *Role
	Status *UserStatus
}
