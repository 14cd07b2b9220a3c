package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/service"
)

// serviceError maps the service error taxonomy onto HTTP responses.
func serviceError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return httpx.Forbidden(c, "forbidden", "Not authorized for this action")
	case errors.Is(err, service.ErrNotFound):
		return httpx.NotFound(c, "not_found", "Resource not found")
	case errors.Is(err, service.ErrInvalidInput):
		return httpx.BadRequest(c, "invalid_input", "Invalid input")
	default:
		return httpx.Internal(c, code)
	}
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func queryInt(c *fiber.Ctx, name string, def int) int {
	if s := c.Query(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			return v
		}
	}
	return def
}
