package identity

import (
	"context"

	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo   identity.UserRepository
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	tenantRepo identity.TenantRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// RegisterUserInput contains input for registering a user
type RegisterUserInput struct {
	TenantID uuid.UUID
	Email    string
	Name     string
	Role     identity.Role
	Password string
}

// ListUsersInput contains filters for listing users
type ListUsersInput struct {
	shared.Filter
	Role   *identity.Role
	Status *identity.UserStatus
}

// Register creates a pending user in an active tenant
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*UserDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_SUSPENDED", "Tenant is suspended")
	}

	user, err := identity.NewUser(input.TenantID, input.Email, input.Name, input.Role, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	dto := ToUserDTO(user)
	return &dto, nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, input ListUsersInput) (*UserListResult, error) {
	users, total, err := s.userRepo.FindAll(ctx, tenantID, identity.UserFilter{
		Filter: input.Filter,
		Role:   input.Role,
		Status: input.Status,
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	result := shared.NewPaginated(dtos, total, input.Page, input.Limit())
	return &result, nil
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, tenantID, id uuid.UUID, role identity.Role) (*UserDTO, error) {
	return s.mutate(ctx, tenantID, id, "role changed", func(u *identity.User) error {
		return u.ChangeRole(role)
	})
}

// Activate moves a user to active
func (s *UserService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.mutate(ctx, tenantID, id, "activated", (*identity.User).Activate)
}

// Deactivate moves a user to deactivated
func (s *UserService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	return s.mutate(ctx, tenantID, id, "deactivated", (*identity.User).Deactivate)
}

func (s *UserService) mutate(ctx context.Context, tenantID, id uuid.UUID, action string, fn func(*identity.User) error) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User "+action,
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", id.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}
