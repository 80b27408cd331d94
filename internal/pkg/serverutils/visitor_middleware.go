package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const VisitorLocalKey = "visitor_id"

// VisitorMiddleware identifies the browser by a random cookie and stores the
// id in ctx.Locals. The cookie is reissued on every request so it slides with
// the in-memory store TTL.
func VisitorMiddleware(cookieName string, ttl time.Duration, secure bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := uuid.Parse(ctx.Cookies(cookieName))
		if err != nil {
			id = uuid.New()
		}

		ctx.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    id.String(),
			Path:     "/",
			Expires:  time.Now().Add(ttl),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		ctx.Locals(VisitorLocalKey, id)
		return ctx.Next()
	}
}

// VisitorID returns the id set by VisitorMiddleware, or uuid.Nil.
func VisitorID(ctx *fiber.Ctx) uuid.UUID {
	id, _ := ctx.Locals(VisitorLocalKey).(uuid.UUID)
	return id
}
