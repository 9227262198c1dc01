package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		expected   string
	}{
		{
			name:       "string error field",
			body:       `{"error":"db timeout"}`,
			statusCode: http.StatusInternalServerError,
			expected:   "db timeout",
		},
		{
			name:       "object error field",
			body:       `{"error":{"code":42}}`,
			statusCode: http.StatusBadGateway,
			expected:   `{"code":42}`,
		},
		{
			name:       "null error field falls back to status text",
			body:       `{"error":null}`,
			statusCode: http.StatusServiceUnavailable,
			expected:   "Service Unavailable",
		},
		{
			name:       "no error field",
			body:       `{"message":"nope"}`,
			statusCode: http.StatusNotFound,
			expected:   "Not Found",
		},
		{
			name:       "non JSON body",
			body:       `<html>bad gateway</html>`,
			statusCode: http.StatusBadGateway,
			expected:   "Bad Gateway",
		},
		{
			name:       "empty body",
			body:       ``,
			statusCode: http.StatusInternalServerError,
			expected:   "Internal Server Error",
		},
		{
			name:       "unknown status code",
			body:       ``,
			statusCode: 599,
			expected:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractErrorMessage([]byte(tt.body), tt.statusCode))
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, http.StatusInternalServerError, "db timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "db timeout", body["error"])
}

func TestWritePayload(t *testing.T) {
	t.Run("keeps stored content type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, WritePayload(rec, "application/vnd.api+json", []byte(`{"a":1}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.api+json", rec.Header().Get("Content-Type"))
		assert.Equal(t, `{"a":1}`, rec.Body.String())
	})

	t.Run("defaults to JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, WritePayload(rec, "", []byte(`[]`)))

		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}
