package handler

import (
	"github.com/bizportal/backend/internal/domain/profile"
	"github.com/bizportal/backend/internal/interfaces/http/dto"
)

// CreateTenantRequest is the body of POST /tenants
type CreateTenantRequest struct {
	Code string `json:"code" binding:"required,min=2,max=50"`
	Name string `json:"name" binding:"required,max=200"`
}

// RegisterUserRequest is the body of POST /users
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"required,oneof=admin seller buyer"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateRoleRequest is the body of PUT /users/:id/role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin seller buyer"`
}

// ListUsersQuery filters GET /users
type ListUsersQuery struct {
	dto.ListRequest
	Role   string `form:"role" binding:"omitempty,oneof=admin seller buyer"`
	Status string `form:"status" binding:"omitempty,oneof=pending active deactivated"`
}

// UpsertSellerRequest is the body of PUT /profiles/sellers/:userId
type UpsertSellerRequest struct {
	Company  profile.Company `json:"company"`
	Address  profile.Address `json:"address"`
	Bank     profile.Bank    `json:"bank"`
	Contact  profile.Contact `json:"contact"`
	Verified bool            `json:"verified"`
}

// Details returns the seller sub-records
func (r UpsertSellerRequest) Details() profile.SellerDetails {
	return profile.SellerDetails{
		Company: r.Company,
		Address: r.Address,
		Bank:    r.Bank,
		Contact: r.Contact,
	}
}

// ListSellersQuery filters GET /profiles/sellers
type ListSellersQuery struct {
	dto.ListRequest
	Verified *bool `form:"verified"`
}

// UpsertBuyerRequest is the body of PUT /profiles/buyers/:userId
type UpsertBuyerRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=200"`
	Segment     string `json:"segment" binding:"required,oneof=enterprise smb consumer"`
	Country     string `json:"country" binding:"omitempty,len=2"`
}

// ListBuyersQuery filters GET /profiles/buyers
type ListBuyersQuery struct {
	dto.ListRequest
	Segment string `form:"segment" binding:"omitempty,oneof=enterprise smb consumer"`
	Churned *bool  `form:"churned"`
}

// RecordOrderRequest is the body of POST /profiles/buyers/:userId/orders
type RecordOrderRequest struct {
	Amount string `json:"amount" binding:"required,decimal_gt0"`
	At     string `json:"at"`
}

// MarkChurnedRequest is the body of POST /profiles/buyers/:userId/churn
type MarkChurnedRequest struct {
	At string `json:"at"`
}

// RecordExpenseRequest is the body of POST /expenses
type RecordExpenseRequest struct {
	Category    string `json:"category" binding:"required,oneof=travel software payroll marketing office other"`
	Amount      string `json:"amount" binding:"required,decimal_gt0"`
	Currency    string `json:"currency" binding:"omitempty,currency"`
	Description string `json:"description" binding:"max=500"`
	IncurredAt  string `json:"incurred_at"`
	SubmittedBy string `json:"submitted_by" binding:"required,uuid"`
}

// ListExpensesQuery filters GET /expenses
type ListExpensesQuery struct {
	dto.ListRequest
	From     string `form:"from"`
	To       string `form:"to"`
	Category string `form:"category" binding:"omitempty,oneof=travel software payroll marketing office other"`
}

// SubmitApprovalRequest is the body of POST /approvals
type SubmitApprovalRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Kind        string `json:"kind" binding:"required,oneof=expense purchase onboarding"`
	Amount      string `json:"amount" binding:"required"`
	RequestedBy string `json:"requested_by" binding:"required,uuid"`
}

// DecisionRequest is the body of approve/reject/cancel
type DecisionRequest struct {
	ActorID string `json:"actor_id" binding:"required,uuid"`
	Comment string `json:"comment" binding:"max=1000"`
}

// ListApprovalsQuery filters GET /approvals
type ListApprovalsQuery struct {
	dto.ListRequest
	Status      string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	Kind        string `form:"kind" binding:"omitempty,oneof=expense purchase onboarding"`
	RequestedBy string `form:"requested_by" binding:"omitempty,uuid"`
}
