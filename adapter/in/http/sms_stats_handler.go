package http

import (
	"context"

	"sms_classifier/core/port/out"
	"sms_classifier/core/service/classification"
	"sms_classifier/pkg/metrics"
	"sms_classifier/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BackendChecker probes the remote classification service.
type BackendChecker interface {
	Check(ctx context.Context) classification.HealthStatus
}

// StatsHandler serves inbox counts, inference latency and backend health.
type StatsHandler struct {
	messages out.MessageRepository
	tracker  *metrics.PerformanceTracker
	backend  BackendChecker
	mode     string
}

func NewStatsHandler(messages out.MessageRepository, tracker *metrics.PerformanceTracker, backend BackendChecker, mode string) *StatsHandler {
	return &StatsHandler{messages: messages, tracker: tracker, backend: backend, mode: mode}
}

func (h *StatsHandler) Register(r fiber.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/backend/health", h.BackendHealth)
}

func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	data := fiber.Map{"inferenceMode": h.mode}

	if h.messages != nil {
		counts, err := h.messages.Counts(c.UserContext())
		if err != nil {
			return err
		}
		data["counts"] = counts
	}
	if h.tracker != nil {
		data["performance"] = h.tracker.Stats().ToMap()
	}
	return response.OK(c, data)
}

func (h *StatsHandler) BackendHealth(c *fiber.Ctx) error {
	if h.backend == nil {
		return response.OK(c, classification.HealthStatus{ErrorMessage: "no backend configured"})
	}

	status := h.backend.Check(c.UserContext())
	if !status.IsHealthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{Success: false, Data: status})
	}
	return response.OK(c, status)
}
