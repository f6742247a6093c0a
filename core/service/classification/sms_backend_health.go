package classification

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sms_classifier/pkg/httputil"
	"sms_classifier/pkg/logger"
)

// HealthStatus is the result of one backend probe.
type HealthStatus struct {
	IsHealthy      bool      `json:"isHealthy"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	LastChecked    time.Time `json:"lastChecked"`
}

// BackendHealthChecker probes the remote classification service.
type BackendHealthChecker struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewBackendHealthChecker(baseURL string, client *http.Client) *BackendHealthChecker {
	if client == nil {
		client = httputil.NewOptimizedClient(httputil.HealthCheckClientConfig())
	}
	return &BackendHealthChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     logger.Component("backend_health"),
	}
}

// Check tries /health and then /classify. A 405 on /classify still proves
// the service is up.
func (h *BackendHealthChecker) Check(ctx context.Context) HealthStatus {
	start := time.Now()
	if h.baseURL == "" {
		return HealthStatus{
			ErrorMessage: "Backend health check failed: no backend URL configured",
			LastChecked:  time.Now(),
		}
	}

	var lastErr error
	for _, path := range []string{"/health", "/classify"} {
		ok, err := h.probe(ctx, h.baseURL+path)
		if err != nil {
			lastErr = err
			h.log.Debug().Err(err).Str("path", path).Msg("health probe failed")
			continue
		}
		if ok {
			return HealthStatus{
				IsHealthy:      true,
				ResponseTimeMs: time.Since(start).Milliseconds(),
				LastChecked:    time.Now(),
			}
		}
	}

	status := HealthStatus{
		ResponseTimeMs: time.Since(start).Milliseconds(),
		ErrorMessage:   "Unable to reach backend service",
		LastChecked:    time.Now(),
	}
	if lastErr != nil {
		status.ErrorMessage = "Backend health check failed: " + lastErr.Error()
	}
	return status
}

func (h *BackendHealthChecker) probe(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := httputil.DoWithContext(ctx, h.client, req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusMethodNotAllowed, nil
}
