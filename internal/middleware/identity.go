package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Identity resolves the request's owner context from the gateway headers.
// Authentication itself happens upstream; this service trusts the
// forwarded identity and only rejects requests without one.
//
//	X-Owner-ID       required owner identifier
//	X-Memory-Opt-In  "true" when the owner opted into personalization
//	X-Locale         presentation locale ("he", "en", ...)
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID := c.Get("X-Owner-ID")
		if ownerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing owner identity",
			})
		}

		c.Locals("user_id", ownerID)
		c.Locals("opt_in", c.Get("X-Memory-Opt-In") == "true")
		c.Locals("locale", models.NormalizeLocale(c.Get("X-Locale")))
		return c.Next()
	}
}

// OwnerID reads the resolved owner from the request context.
func OwnerID(c *fiber.Ctx) string {
	ownerID, _ := c.Locals("user_id").(string)
	return ownerID
}

// OptIn reads the resolved personalization flag.
func OptIn(c *fiber.Ctx) bool {
	optIn, _ := c.Locals("opt_in").(bool)
	return optIn
}

// RequestLocale reads the resolved locale.
func RequestLocale(c *fiber.Ctx) models.Locale {
	locale, ok := c.Locals("locale").(models.Locale)
	if !ok {
		return models.LocaleUnknown
	}
	return locale
}
