package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/localnerve/equirecords/internal/utils"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-Id"

// RequestID reuses the caller's X-Request-Id when it is a UUID, otherwise generates one.
// The id is stored in Locals and echoed on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.Clone(c.Get(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Locals(utils.RequestIDKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
