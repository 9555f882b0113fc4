package approval

import (
	"context"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows approval listings
type Filter struct {
	shared.Filter

	Status      *Status
	Kind        *Kind
	RequestedBy *uuid.UUID
}

// Repository defines the interface for approval request persistence
type Repository interface {
	Create(ctx context.Context, req *Request) error
	CreateBatch(ctx context.Context, reqs []*Request) error

	// Update saves req if the stored version is req.Version-1, otherwise it
	// returns shared.ErrConcurrencyConflict
	Update(ctx context.Context, req *Request) error

	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Request, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]*Request, int64, error)

	// StatusCounts returns the number of requests per status
	StatusCounts(ctx context.Context, tenantID uuid.UUID) (map[Status]int64, error)

	// DecidedSince returns requests decided at or after since
	DecidedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]*Request, error)
}
