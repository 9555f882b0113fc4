package approval

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bizportal/backend/internal/domain/approval"
	"github.com/bizportal/backend/internal/domain/identity"
	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/infrastructure/persistence"
	"github.com/bizportal/backend/tests/testutil"
)

var decidedAt = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *ApprovalService
	tenantID  uuid.UUID
	admin     *identity.User
	requester *identity.User
	changes   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	tenant := testutil.CreateTenant(t, db, "acme")

	f := &fixture{tenantID: tenant.ID}
	f.admin = testutil.CreateUser(t, db, tenant.ID, "admin@acme.io", identity.RoleAdmin)
	f.requester = testutil.CreateUser(t, db, tenant.ID, "seller@acme.io", identity.RoleSeller)
	f.svc = NewApprovalService(
		persistence.NewGormApprovalRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		zap.NewNop(),
		WithClock(testutil.FixedClock(decidedAt)),
		WithChangeNotifier(func(context.Context, uuid.UUID) { f.changes++ }),
	)
	return f
}

func (f *fixture) submit(t *testing.T) *RequestDTO {
	t.Helper()
	dto, err := f.svc.Submit(context.Background(), SubmitInput{
		TenantID:    f.tenantID,
		Title:       "New laptop",
		Kind:        approval.KindPurchase,
		Amount:      decimal.RequireFromString("1999.00"),
		RequestedBy: f.requester.ID,
	})
	require.NoError(t, err)
	return dto
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestApprovalService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.submit(t)
	assert.Equal(t, "pending", req.Status)

	got, err := f.svc.Approve(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.admin.ID, Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, decidedAt.Equal(*got.DecidedAt))
	assert.Equal(t, f.admin.ID, *got.DecidedBy)

	_, err = f.svc.Reject(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.admin.ID, Comment: "late"})
	assert.Equal(t, "INVALID_STATE", domainCode(t, err))

	stored, err := f.svc.Get(ctx, f.tenantID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.Equal(t, 2, f.changes)
}

func TestApprovalService_OnlyAdminsDecide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.svc.Approve(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.requester.ID})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestApprovalService_RejectNeedsComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.svc.Reject(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.admin.ID})
	assert.Equal(t, "INVALID_INPUT", domainCode(t, err))

	got, err := f.svc.Reject(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.admin.ID, Comment: "over budget"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
	assert.Equal(t, "over budget", got.Comment)
}

func TestApprovalService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.svc.Cancel(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.admin.ID})
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	got, err := f.svc.Cancel(ctx, DecisionInput{TenantID: f.tenantID, RequestID: req.ID, ActorID: f.requester.ID})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
}

func TestApprovalService_ListAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.submit(t)
	f.submit(t)

	status := approval.StatusPending
	page, err := f.svc.List(ctx, f.tenantID, approval.Filter{Filter: shared.DefaultFilter(), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = f.svc.Get(ctx, f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.Submit(ctx, SubmitInput{TenantID: f.tenantID, Title: "x", Kind: approval.KindExpense, RequestedBy: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
