package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/souqtrack/souqtrack/pkg/utils"
)

// APIKeyAuth guards a router group with a shared secret passed in the
// X-API-Key header. An empty configured secret disables the check, which is
// intended for local development only.
func APIKeyAuth(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		provided := ctx.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(utils.ResponseData{
				Status:  fiber.StatusUnauthorized,
				Code:    "UNAUTHORIZED",
				Message: "Invalid or missing API key",
			})
		}
		return ctx.Next()
	}
}
