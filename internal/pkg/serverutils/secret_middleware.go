package serverutils

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// SecretKeyMiddleware guards service-to-service routes with the shared
// X-AI-SECRET-KEY header. An empty configured secret disables the check
// (local development).
func SecretKeyMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		provided := ctx.Get("X-AI-SECRET-KEY")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid service key"})
		}
		return ctx.Next()
	}
}
