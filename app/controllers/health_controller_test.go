package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthController(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		wantCode   int
		wantStatus string
		wantStore  string
	}{
		{name: "healthy", wantCode: http.StatusOK, wantStatus: "healthy", wantStore: "ok"},
		{name: "store down", storeErr: errors.New("closed"), wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy", wantStore: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mock.NewPostRepository()
			repo.Err = tt.storeErr
			hc := NewHealthController(repo, "")

			w := httptest.NewRecorder()
			hc.Check(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			var body healthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantStore, body.Checks["store"])
			assert.Equal(t, "skipped", body.Checks["rabbitmq"])
		})
	}
}
