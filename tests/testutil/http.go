// Package testutil provides shared helpers for handler, repository and service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizportal/backend/internal/interfaces/http/dto"
)

// HTTPTestCase describes one call of a handler outside the router.
// TenantID and RequestID are placed on the gin context the way the
// tenant and request-id middleware would.
type HTTPTestCase struct {
	Method         string
	Path           string
	Body           any
	TenantID       uuid.UUID
	RequestID      string
	Headers        map[string]string
	ExpectedStatus int
	ExpectedBody   map[string]any
	Setup          func(t *testing.T, tc *TestContext)
	Validate       func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCase invokes handler with the request described by tc.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) *TestContext {
	t.Helper()

	method, path := tc.Method, tc.Path
	if method == "" {
		method = http.MethodGet
	}
	if path == "" {
		path = "/"
	}

	ctx := NewTestContext(t)
	ctx.Context.Request = httptest.NewRequest(method, path, jsonBody(t, tc.Body))
	if tc.Body != nil {
		ctx.SetHeader("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		ctx.SetHeader(k, v)
	}
	if tc.TenantID != uuid.Nil {
		ctx.SetTenantID(tc.TenantID)
	}
	if tc.RequestID != "" {
		ctx.SetRequestID(tc.RequestID)
	}
	if tc.Setup != nil {
		tc.Setup(t, ctx)
	}

	handler(ctx.Context)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, ctx.ResponseCode(), "status for %s %s: %s", method, path, ctx.ResponseBody())
	}
	if len(tc.ExpectedBody) > 0 {
		body := JSONResponse(t, ctx)
		for key, want := range tc.ExpectedBody {
			assert.Equal(t, want, body[key], "response field %q", key)
		}
	}
	if tc.Validate != nil {
		tc.Validate(t, ctx)
	}
	return ctx
}

// JSONResponse decodes the response body into a generic map.
func JSONResponse(t *testing.T, tc *TestContext) map[string]any {
	t.Helper()
	return JSONResponseAs[map[string]any](t, tc)
}

// JSONResponseAs decodes the response body into T.
func JSONResponseAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &out), "response body: %s", tc.ResponseBody())
	return out
}

// Envelope decodes the response into the API envelope.
func Envelope(t *testing.T, tc *TestContext) dto.Response {
	t.Helper()
	return JSONResponseAs[dto.Response](t, tc)
}

// AssertSuccessResponse checks the envelope reports success without an error.
func AssertSuccessResponse(t *testing.T, tc *TestContext) {
	t.Helper()

	resp := Envelope(t, tc)
	assert.True(t, resp.Success, "envelope success flag")
	assert.Nil(t, resp.Error)
}

// AssertErrorResponse checks the envelope carries an error with the given code.
func AssertErrorResponse(t *testing.T, tc *TestContext, code string) *dto.ErrorInfo {
	t.Helper()

	resp := Envelope(t, tc)
	assert.False(t, resp.Success, "envelope success flag")
	require.NotNil(t, resp.Error, "envelope error")
	assert.Equal(t, code, resp.Error.Code)
	return resp.Error
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	if v == nil {
		return nil
	}
	if raw, ok := v.(string); ok {
		return bytes.NewBufferString(raw)
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
