// Package approval drives approval requests through their workflow.
package approval

import (
	"context"
	"time"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApprovalService handles the approval workflow
type ApprovalService struct {
	repo   approval.Repository
	users  identity.UserRepository
	logger *zap.Logger
	notify func(ctx context.Context, tenantID uuid.UUID)
	now    func() time.Time
}

// Option configures an ApprovalService
type Option func(*ApprovalService)

// WithChangeNotifier registers a callback run after any request changes
func WithChangeNotifier(fn func(ctx context.Context, tenantID uuid.UUID)) Option {
	return func(s *ApprovalService) {
		if fn != nil {
			s.notify = fn
		}
	}
}

// WithClock overrides the time source used for decisions
func WithClock(now func() time.Time) Option {
	return func(s *ApprovalService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewApprovalService creates a new approval service
func NewApprovalService(repo approval.Repository, users identity.UserRepository, logger *zap.Logger, opts ...Option) *ApprovalService {
	s := &ApprovalService{
		repo:   repo,
		users:  users,
		logger: logger,
		notify: func(context.Context, uuid.UUID) {},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput contains input for submitting a request
type SubmitInput struct {
	TenantID    uuid.UUID
	Title       string
	Kind        approval.Kind
	Amount      decimal.Decimal
	RequestedBy uuid.UUID
}

// DecisionInput identifies who decides on which request
type DecisionInput struct {
	TenantID  uuid.UUID
	RequestID uuid.UUID
	ActorID   uuid.UUID
	Comment   string
}

// RequestDTO is the API view of an approval request
type RequestDTO struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Title       string          `json:"title"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	RequestedBy uuid.UUID       `json:"requested_by"`
	Status      string          `json:"status"`
	DecidedBy   *uuid.UUID      `json:"decided_by,omitempty"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToRequestDTO converts a domain request
func ToRequestDTO(r *approval.Request) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Title:       r.Title,
		Kind:        string(r.Kind),
		Amount:      r.Amount,
		RequestedBy: r.RequestedBy,
		Status:      string(r.Status),
		DecidedBy:   r.DecidedBy,
		DecidedAt:   r.DecidedAt,
		Comment:     r.Comment,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Submit creates a pending request on behalf of an active user
func (s *ApprovalService) Submit(ctx context.Context, input SubmitInput) (*RequestDTO, error) {
	requester, err := s.users.FindByID(ctx, input.TenantID, input.RequestedBy)
	if err != nil {
		return nil, err
	}
	if !requester.IsActive() {
		return nil, shared.NewDomainError("USER_INACTIVE", "Only active users can submit requests")
	}

	req, err := approval.NewRequest(input.TenantID, input.Title, input.Kind, input.Amount, input.RequestedBy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.notify(ctx, input.TenantID)

	s.logger.Info("Approval request submitted",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("request_id", req.ID.String()),
		zap.String("kind", string(req.Kind)))

	dto := ToRequestDTO(req)
	return &dto, nil
}

// Approve approves a pending request. Only admins decide.
func (s *ApprovalService) Approve(ctx context.Context, input DecisionInput) (*RequestDTO, error) {
	if err := s.requireAdmin(ctx, input.TenantID, input.ActorID); err != nil {
		return nil, err
	}
	return s.transition(ctx, input, "approved", func(r *approval.Request, at time.Time) error {
		return r.Approve(input.ActorID, input.Comment, at)
	})
}

// Reject rejects a pending request with a mandatory comment. Only admins decide.
func (s *ApprovalService) Reject(ctx context.Context, input DecisionInput) (*RequestDTO, error) {
	if err := s.requireAdmin(ctx, input.TenantID, input.ActorID); err != nil {
		return nil, err
	}
	return s.transition(ctx, input, "rejected", func(r *approval.Request, at time.Time) error {
		return r.Reject(input.ActorID, input.Comment, at)
	})
}

// Cancel withdraws a pending request; only its requester may cancel
func (s *ApprovalService) Cancel(ctx context.Context, input DecisionInput) (*RequestDTO, error) {
	return s.transition(ctx, input, "cancelled", func(r *approval.Request, at time.Time) error {
		return r.Cancel(input.ActorID, at)
	})
}

// Get returns a request by ID
func (s *ApprovalService) Get(ctx context.Context, tenantID, id uuid.UUID) (*RequestDTO, error) {
	req, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToRequestDTO(req)
	return &dto, nil
}

// List returns a page of requests
func (s *ApprovalService) List(ctx context.Context, tenantID uuid.UUID, filter approval.Filter) (*shared.Paginated[RequestDTO], error) {
	items, total, err := s.repo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]RequestDTO, len(items))
	for i, r := range items {
		dtos[i] = ToRequestDTO(r)
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.Limit())
	return &page, nil
}

func (s *ApprovalService) transition(ctx context.Context, input DecisionInput, action string, fn func(*approval.Request, time.Time) error) (*RequestDTO, error) {
	req, err := s.repo.FindByID(ctx, input.TenantID, input.RequestID)
	if err != nil {
		return nil, err
	}
	if err := fn(req, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.notify(ctx, input.TenantID)

	s.logger.Info("Approval request "+action,
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("request_id", req.ID.String()),
		zap.String("actor_id", input.ActorID.String()))

	dto := ToRequestDTO(req)
	return &dto, nil
}

func (s *ApprovalService) requireAdmin(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if user.Role != identity.RoleAdmin || !user.IsActive() {
		return shared.NewDomainError("FORBIDDEN", "Only active admins can decide approval requests")
	}
	return nil
}
