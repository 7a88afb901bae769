package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestExtractRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		expected string
	}{
		{
			name:     "canonical header",
			header:   http.Header{"X-Request-Id": {"abc-123"}},
			expected: "abc-123",
		},
		{
			name:     "underscore variant",
			header:   http.Header{"X_request_id": {"meta-42"}},
			expected: "meta-42",
		},
		{
			name:     "canonical wins over variant",
			header:   http.Header{"X-Request-Id": {"canon"}, "X_REQUEST_ID": {"meta"}},
			expected: "canon",
		},
		{
			name:     "empty canonical falls back",
			header:   http.Header{"X-Request-Id": {""}, "X_REQUEST_ID": {"", "meta"}},
			expected: "meta",
		},
		{
			name:     "absent",
			header:   http.Header{"Accept": {"text/html"}},
			expected: "",
		},
		{
			name:     "similar name is not a match",
			header:   http.Header{"X-Request-Ids": {"nope"}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractRequestID(tt.header))
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen, seenHeader string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		seenHeader = r.Header.Get(RequestIDHeader)
	})

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-id")
		w := httptest.NewRecorder()

		RequestID(true)(next).ServeHTTP(w, req)

		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))
	})

	t.Run("generates when enabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		RequestID(true)(next).ServeHTTP(w, req)

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, seenHeader)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("leaves request alone when disabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		RequestID(false)(next).ServeHTTP(w, req)

		assert.Empty(t, seen)
		assert.Empty(t, seenHeader)
		assert.Empty(t, w.Header().Get(RequestIDHeader))
	})
}

func TestLogging(t *testing.T) {
	logger, buf := newTestLogger()
	handler := RequestID(false)(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "rid")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "http request", record["msg"])
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/test", record["path"])
	assert.Equal(t, float64(http.StatusTeapot), record["status"])
	assert.Equal(t, "rid", record["request_id"])
	assert.Contains(t, record, "duration_ms")
}

func TestLoggingDefaultsToOK(t *testing.T) {
	logger, buf := newTestLogger()
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, float64(http.StatusOK), record["status"])
	assert.NotContains(t, record, "request_id")
}

func TestRecoverer(t *testing.T) {
	logger, buf := newTestLogger()
	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error\n", w.Body.String())
	assert.Contains(t, buf.String(), "test panic")
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	handler := BasicAuth("admin", "editor", string(hash))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		user     string
		pass     string
		setAuth  bool
		expected int
	}{
		{name: "valid credentials", user: "editor", pass: "s3cret", setAuth: true, expected: http.StatusNoContent},
		{name: "wrong password", user: "editor", pass: "guess", setAuth: true, expected: http.StatusUnauthorized},
		{name: "wrong user", user: "root", pass: "s3cret", setAuth: true, expected: http.StatusUnauthorized},
		{name: "no credentials", expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), `Basic realm="admin"`)
			}
		})
	}
}
