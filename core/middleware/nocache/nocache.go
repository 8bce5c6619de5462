package nocache

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Header values sent on every response.
const (
	CacheControl = "no-store, no-cache, must-revalidate, max-age=0"
	Pragma       = "no-cache"
	Expires      = "0"
)

// Config defines the config for the middleware.
type Config struct {
	// Next defines a function to skip this middleware when it returns true.
	Next func(c *fiber.Ctx) bool
}

// New creates a middleware that forbids client and proxy caching.
//
// The rest of the chain runs first. Errors are handed to the application's
// error handler here, so the headers are set on the final response whatever
// its status code. If the error handler itself fails, the response becomes a
// 500 and the failure is returned.
func New(config ...Config) fiber.Handler {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		var err error
		if chainErr := c.Next(); chainErr != nil {
			if herr := c.App().ErrorHandler(c, chainErr); herr != nil {
				err = errors.Join(herr, c.SendStatus(fiber.StatusInternalServerError))
			}
		}

		Apply(c)
		return err
	}
}

// ErrorHandler wraps next so that responses produced outside the middleware
// chain, such as fasthttp rejecting a malformed request, carry the headers too.
// A nil next falls back to fiber.DefaultErrorHandler.
func ErrorHandler(next fiber.ErrorHandler) fiber.ErrorHandler {
	if next == nil {
		next = fiber.DefaultErrorHandler
	}
	return func(c *fiber.Ctx, err error) error {
		herr := next(c, err)
		Apply(c)
		return herr
	}
}

// Apply sets the no-cache headers on the response, replacing any caching
// headers already present.
func Apply(c *fiber.Ctx) {
	h := &c.Response().Header
	h.Set(fiber.HeaderCacheControl, CacheControl)
	h.Set(fiber.HeaderPragma, Pragma)
	h.Set(fiber.HeaderExpires, Expires)
}
