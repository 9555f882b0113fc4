package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizportal/backend/internal/domain/shared"
	"github.com/bizportal/backend/internal/interfaces/http/dto"
	"github.com/bizportal/backend/tests/testutil"
)

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewDomainError("EMAIL_EXISTS", "taken")), http.StatusConflict, dto.ErrCodeEmailExists},
		{"unlisted invalid code", shared.NewDomainError("INVALID_SWIFT", "bad swift"), http.StatusBadRequest, "ERR_INVALID_SWIFT"},
		{"business rule", shared.NewDomainError("ROLE_MISMATCH", "wrong role"), http.StatusUnprocessableEntity, dto.ErrCodeRoleMismatch},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testutil.RunHTTPTestCase(t, func(c *gin.Context) { h.HandleError(c, tc.err) }, testutil.HTTPTestCase{
				ExpectedStatus: tc.status,
				RequestID:      "req-42",
				Validate: func(t *testing.T, ctx *testutil.TestContext) {
					info := testutil.AssertErrorResponse(t, ctx, tc.code)
					assert.Equal(t, "req-42", info.RequestID)
				},
			})
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	ctx := testutil.NewTestContext(t)

	h.HandleError(ctx.Context, nil)

	assert.Empty(t, ctx.ResponseBody())
}

func TestBaseHandler_TenantID(t *testing.T) {
	h := &BaseHandler{}

	ctx := testutil.NewTestContext(t)
	_, ok := h.tenantID(ctx.Context)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, ctx.ResponseCode())

	id := uuid.New()
	ctx = testutil.NewTestContext(t)
	ctx.SetTenantID(id)
	got, ok := h.tenantID(ctx.Context)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestBaseHandler_UUIDParam(t *testing.T) {
	h := &BaseHandler{}

	ctx := testutil.NewTestContext(t)
	ctx.Context.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok := h.uuidParam(ctx.Context, "id")
	assert.False(t, ok)
	testutil.AssertErrorResponse(t, ctx, dto.ErrCodeBadRequest)

	id := uuid.New()
	ctx = testutil.NewTestContext(t)
	ctx.Context.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.uuidParam(ctx.Context, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestToFilter(t *testing.T) {
	f := toFilter(dto.ListRequest{})
	assert.Equal(t, shared.DefaultFilter(), f)

	f = toFilter(dto.ListRequest{Page: 3, PageSize: 50, OrderBy: "email", OrderDir: "asc", Search: "  acme "})
	assert.Equal(t, shared.Filter{Page: 3, PageSize: 50, OrderBy: "email", OrderDir: "asc", Search: "acme"}, f)
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTime("2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseTime("2024-04-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC), *got)

	_, err = parseTime("April 1st")
	assert.Error(t, err)

	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	at, err := timeOrNow("", testutil.FixedClock(now))
	require.NoError(t, err)
	assert.Equal(t, now, at)
}
