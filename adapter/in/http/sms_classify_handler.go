package http

import (
	"sms_classifier/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// ClassifyHandler serves on-demand classification. The response body is the
// bare prediction so that another instance can use this one as its remote
// classifier.
type ClassifyHandler struct {
	service in.ClassificationService
}

func NewClassifyHandler(service in.ClassificationService) *ClassifyHandler {
	return &ClassifyHandler{service: service}
}

// Register mounts POST /classify on the router behind any extra handlers.
func (h *ClassifyHandler) Register(r fiber.Router, middleware ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, middleware...), h.Classify)
	r.Post("/classify", handlers...)
}

func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var req in.ClassifyRequest
	if err := BindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.service.Classify(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
