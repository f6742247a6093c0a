package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("message"), http.StatusNotFound},
		{"wrapped model unavailable", fmt.Errorf("load: %w", ModelUnavailable("intent", nil)), http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"invalid input", InvalidInput("text", "empty"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("worker: %w", ModelUnavailable("phishing", errors.New("missing file")))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Error("errors.Is(err, ErrModelUnavailable) = false, want true")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true, want false")
	}
}
