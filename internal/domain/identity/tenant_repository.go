package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByCode finds a tenant by its unique code
	FindByCode(ctx context.Context, code string) (*Tenant, error)

	// FindAll returns all tenants
	FindAll(ctx context.Context) ([]*Tenant, error)

	// UpsertByCode inserts the tenant or updates name and status of the row with
	// the same code. The stored tenant is written back into t.
	UpsertByCode(ctx context.Context, t *Tenant) error
}
