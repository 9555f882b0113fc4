package models

import (
	"time"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalRequestModel is the persistence model for the approval Request aggregate.
type ApprovalRequestModel struct {
	TenantAggregateModel
	Title       string          `gorm:"type:varchar(200);not null"`
	Kind        approval.Kind   `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RequestedBy uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      approval.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	DecidedBy   *uuid.UUID      `gorm:"type:uuid"`
	DecidedAt   *time.Time      `gorm:"index"`
	Comment     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ApprovalRequestModel) TableName() string {
	return "approval_requests"
}

// ToDomain converts the persistence model to a domain approval Request.
func (m *ApprovalRequestModel) ToDomain() *approval.Request {
	return &approval.Request{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Title:               m.Title,
		Kind:                m.Kind,
		Amount:              m.Amount,
		RequestedBy:         m.RequestedBy,
		Status:              m.Status,
		DecidedBy:           m.DecidedBy,
		DecidedAt:           m.DecidedAt,
		Comment:             m.Comment,
	}
}

// ApprovalRequestModelFromDomain creates a persistence model from a domain approval Request.
func ApprovalRequestModelFromDomain(r *approval.Request) *ApprovalRequestModel {
	m := &ApprovalRequestModel{
		Title:       r.Title,
		Kind:        r.Kind,
		Amount:      r.Amount,
		RequestedBy: r.RequestedBy,
		Status:      r.Status,
		DecidedBy:   r.DecidedBy,
		DecidedAt:   r.DecidedAt,
		Comment:     r.Comment,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
