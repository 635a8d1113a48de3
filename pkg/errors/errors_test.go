package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationError_Error(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Upstream("GitHub events request failed", "status 502", cause)

	assert.Contains(t, err.Error(), "[UPSTREAM_ERROR] GitHub events request failed")
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "caused by: connection refused")
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.CallerTrace)
}

func TestTaxonomyHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		upstream bool
		parse    bool
		notFound bool
	}{
		{name: "upstream", err: Upstream("t", "d", nil), upstream: true},
		{name: "parse", err: Parse("t", "d", nil), parse: true},
		{name: "not found", err: NotFound("t", "d", nil), notFound: true},
		{name: "wrapped upstream", err: fmt.Errorf("loading alice: %w", Upstream("t", "d", nil)), upstream: true},
		{name: "nested", err: New("LOADER_ERROR", "t", "d", Parse("t", "d", nil), LevelError), parse: true},
		{name: "plain error", err: fmt.Errorf("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.upstream, IsUpstream(tt.err))
			assert.Equal(t, tt.parse, IsParse(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
		})
	}
}

func TestWriteHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRef    string
	}{
		{name: "not found", err: NotFound("Reinforcement not found", "id 3", nil), wantStatus: http.StatusNotFound, wantRef: RefNotFound},
		{name: "upstream", err: Upstream("GitHub failed", "", nil), wantStatus: http.StatusBadGateway, wantRef: RefUpstream},
		{name: "parse", err: Parse("Invalid body", "", nil), wantStatus: http.StatusBadRequest, wantRef: RefParse},
		{name: "unavailable", err: Unavailable("Chat is not configured", ""), wantStatus: http.StatusServiceUnavailable, wantRef: RefUnavailable},
		{name: "plain", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteHTTPError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantRef, resp.ErrorRef)
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}
