package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the key under which the RayID is stored in the request locals.
const LocalsKey = "ray_id"

// New generates a RayID for every request and stores it in the request locals.
// The id is kept server-side only; it is used to correlate log lines.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalsKey, uuid.NewString())
		return c.Next()
	}
}

// Get returns the RayID of the request, or an empty string.
func Get(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalsKey).(string); ok {
		return id
	}
	return ""
}
