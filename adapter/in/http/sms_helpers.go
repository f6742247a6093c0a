package http

import (
	"strconv"

	"sms_classifier/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ParseID reads a positive int64 path parameter.
func ParseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput(name, "must be a positive integer")
	}
	return id, nil
}

// BindJSON decodes the request body into dest.
func BindJSON(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return apperr.BadRequest("request body is required")
	}
	if err := c.BodyParser(dest); err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}
