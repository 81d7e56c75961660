package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailkit/core/response"
)

// testContext is a minimal handler.Context for rendering tests.
type testContext struct {
	w http.ResponseWriter
	r *http.Request
}

func (tc *testContext) Deadline() (time.Time, bool)        { return tc.r.Context().Deadline() }
func (tc *testContext) Done() <-chan struct{}              { return tc.r.Context().Done() }
func (tc *testContext) Err() error                         { return tc.r.Context().Err() }
func (tc *testContext) Value(key any) any                  { return tc.r.Context().Value(key) }
func (tc *testContext) SetValue(key, val any)              {}
func (tc *testContext) Request() *http.Request             { return tc.r }
func (tc *testContext) ResponseWriter() http.ResponseWriter { return tc.w }
func (tc *testContext) Param(key string) string            { return "" }

type customStatusError struct {
	message string
	status  int
}

func (e customStatusError) Error() string   { return e.message }
func (e customStatusError) StatusCode() int { return e.status }

func TestStringWithStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	err := response.StringWithStatus("missing emails", http.StatusBadRequest)(rec, req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "missing emails", rec.Body.String())
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	require.NoError(t, response.NoContent()(rec, req))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSONWithStatus(t *testing.T) {
	t.Parallel()

	t.Run("encodes body", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		require.NoError(t, response.JSONWithStatus(map[string]string{"status": "ok"}, http.StatusCreated)(rec, req))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("nil data without status is 204", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		require.NoError(t, response.JSONWithStatus(nil, 0)(rec, req))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestError_PropagatesError(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	err := response.Error(want)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, want)
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "http error",
			err:            response.ErrBadRequest.WithMessage("invalid payload"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid payload",
		},
		{
			name:           "wrapped http error",
			err:            fmt.Errorf("bind: %w", response.ErrUnprocessableEntity),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "Unprocessable Entity",
		},
		{
			name:           "status code error",
			err:            customStatusError{message: "upstream", status: http.StatusBadGateway},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "Bad Gateway",
		},
		{
			name:           "unknown status falls back to 500",
			err:            customStatusError{message: "teapot", status: http.StatusTeapot},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error",
		},
		{
			name:           "plain error",
			err:            errors.New("smtp down"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			ctx := &testContext{w: rec, r: httptest.NewRequest(http.MethodGet, "/", nil)}

			response.ErrorHandler(ctx, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ctx := &testContext{w: rec, r: httptest.NewRequest(http.MethodGet, "/", nil)}

	response.JSONErrorHandler(ctx, errors.New("template missing"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal_server_error", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "template missing", details["cause"])
}

func TestHTTPError_WithErrorDoesNotMutateShared(t *testing.T) {
	t.Parallel()

	_ = response.ErrBadRequest.WithError(errors.New("first"))
	assert.Nil(t, response.ErrBadRequest.Details)
}
