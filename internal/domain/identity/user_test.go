package identity

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates user with valid fields", func(t *testing.T) {
		user, err := NewUser(tenantID, "seller@example.com", "Ada Seller", RoleSeller, "Password123")

		require.NoError(t, err)
		assert.Equal(t, tenantID, user.TenantID)
		assert.Equal(t, "seller@example.com", user.Email)
		assert.Equal(t, "Ada Seller", user.Name)
		assert.Equal(t, RoleSeller, user.Role)
		assert.Equal(t, UserStatusPending, user.Status)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.Equal(t, 1, user.Version)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		user, err := NewUser(tenantID, "  Buyer@Example.COM ", "Bob", RoleBuyer, "Password123")

		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", user.Email)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewUser(tenantID, "not-an-email", "Bob", RoleBuyer, "Password123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@example.com", "   ", RoleBuyer, "Password123")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Name cannot be empty")
	})

	t.Run("fails with unknown role", func(t *testing.T) {
		_, err := NewUser(tenantID, "a@example.com", "Bob", Role("owner"), "Password123")

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_ROLE", domainErr.Code)
	})

	t.Run("password rules", func(t *testing.T) {
		cases := map[string]string{
			"too short":  "Pass1",
			"too long":   strings.Repeat("a1", 65),
			"no digit":   "Password",
			"no letters": "12345678",
		}
		for name, pw := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := NewUser(tenantID, "a@example.com", "Bob", RoleBuyer, pw)
				var domainErr *shared.DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
			})
		}
	})
}

func TestUser_Password(t *testing.T) {
	user, err := NewUser(uuid.New(), "a@example.com", "Bob", RoleAdmin, "Password123")
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("Password123"))
	assert.False(t, user.VerifyPassword("wrong"))

	require.NoError(t, user.SetPassword("NewPassword456"))
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.False(t, user.VerifyPassword("Password123"))
	assert.Equal(t, 2, user.Version)

	assert.Error(t, user.SetPassword("short"))
}

func TestUser_StatusTransitions(t *testing.T) {
	user, err := NewUser(uuid.New(), "a@example.com", "Bob", RoleBuyer, "Password123")
	require.NoError(t, err)

	require.NoError(t, user.Activate())
	assert.True(t, user.IsActive())
	assert.ErrorIs(t, user.Activate(), shared.ErrInvalidState)

	require.NoError(t, user.Deactivate())
	assert.Equal(t, UserStatusDeactivated, user.Status)
	assert.ErrorIs(t, user.Deactivate(), shared.ErrInvalidState)

	require.NoError(t, user.Activate())
	assert.True(t, user.IsActive())
}

func TestUser_RenameAndChangeRole(t *testing.T) {
	user, err := NewUser(uuid.New(), "a@example.com", "Bob", RoleBuyer, "Password123")
	require.NoError(t, err)

	require.NoError(t, user.Rename("  Robert "))
	assert.Equal(t, "Robert", user.Name)
	assert.Error(t, user.Rename(""))

	require.NoError(t, user.ChangeRole(RoleSeller))
	assert.Equal(t, RoleSeller, user.Role)
	assert.Error(t, user.ChangeRole(Role("root")))
}
