package classification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBackendHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		healthy bool
		errMsg  string
	}{
		{
			name: "health endpoint ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("method = %s, want HEAD", r.Method)
				}
				w.WriteHeader(http.StatusOK)
			},
			healthy: true,
		},
		{
			name: "classify answers method not allowed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/classify" {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				w.WriteHeader(http.StatusNotFound)
			},
			healthy: true,
		},
		{
			name: "nothing answers",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			errMsg: "Unable to reach backend service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got := NewBackendHealthChecker(srv.URL, nil).Check(context.Background())
			if got.IsHealthy != tt.healthy {
				t.Errorf("IsHealthy = %v, want %v", got.IsHealthy, tt.healthy)
			}
			if got.ErrorMessage != tt.errMsg {
				t.Errorf("ErrorMessage = %q, want %q", got.ErrorMessage, tt.errMsg)
			}
			if got.LastChecked.IsZero() {
				t.Error("LastChecked not set")
			}
		})
	}
}

func TestBackendHealthChecker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := NewBackendHealthChecker(url, nil).Check(context.Background())
	if got.IsHealthy {
		t.Error("IsHealthy = true for a closed server")
	}
	if !strings.HasPrefix(got.ErrorMessage, "Backend health check failed: ") {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}
}
