package approval

import (
	"strings"
	"time"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is what an approval request is asking for
type Kind string

const (
	KindExpense    Kind = "expense"
	KindPurchase   Kind = "purchase"
	KindOnboarding Kind = "onboarding"
)

// AllKinds lists request kinds in display order
var AllKinds = []Kind{KindExpense, KindPurchase, KindOnboarding}

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindExpense, KindPurchase, KindOnboarding:
		return true
	}
	return false
}

// Status represents the state of an approval request
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// AllStatuses lists statuses in workflow order
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once a decision or cancellation has been recorded
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Request is an item moving through the approval workflow
type Request struct {
	shared.TenantAggregateRoot
	Title       string
	Kind        Kind
	Amount      decimal.Decimal
	RequestedBy uuid.UUID
	Status      Status
	DecidedBy   *uuid.UUID
	DecidedAt   *time.Time
	Comment     string
}

// NewRequest creates a pending approval request
func NewRequest(tenantID uuid.UUID, title string, kind Kind, amount decimal.Decimal, requestedBy uuid.UUID) (*Request, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Kind must be one of expense, purchase, onboarding")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Requester user ID cannot be empty")
	}

	return &Request{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Title:               title,
		Kind:                kind,
		Amount:              amount,
		RequestedBy:         requestedBy,
		Status:              StatusPending,
	}, nil
}

// Approve approves a pending request
func (r *Request) Approve(by uuid.UUID, comment string, at time.Time) error {
	if err := r.decide(StatusApproved, by, at); err != nil {
		return err
	}
	r.Comment = strings.TrimSpace(comment)
	return nil
}

// Reject rejects a pending request; a comment is mandatory
func (r *Request) Reject(by uuid.UUID, comment string, at time.Time) error {
	comment = strings.TrimSpace(comment)
	if r.Status == StatusPending && comment == "" {
		return shared.NewDomainError("INVALID_INPUT", "A comment is required to reject a request")
	}
	if err := r.decide(StatusRejected, by, at); err != nil {
		return err
	}
	r.Comment = comment
	return nil
}

// Cancel withdraws a pending request; only the requester may cancel
func (r *Request) Cancel(by uuid.UUID, at time.Time) error {
	if r.Status == StatusPending && by != r.RequestedBy {
		return shared.NewDomainError("FORBIDDEN", "Only the requester can cancel a request")
	}
	return r.decide(StatusCancelled, by, at)
}

func (r *Request) decide(to Status, by uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return shared.Errorf("INVALID_STATE", "Cannot move request from %s to %s", r.Status, to)
	}
	if by == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Decider user ID cannot be empty")
	}
	at = at.UTC()
	r.Status = to
	r.DecidedBy = &by
	r.DecidedAt = &at
	r.MarkChanged(at)
	return nil
}

// DecisionDuration is the time from submission to decision
func (r *Request) DecisionDuration() (time.Duration, bool) {
	if r.DecidedAt == nil {
		return 0, false
	}
	return r.DecidedAt.Sub(r.CreatedAt), true
}
