package middleware

import (
	"rumorplaza/internal/identity"

	"github.com/gofiber/fiber/v2"
)

// ClientIDHeader carries the opaque client identity used for like state.
const ClientIDHeader = "X-Client-ID"

// ClientIDLocal is the Fiber locals key holding the resolved client id.
const ClientIDLocal = "clientID"

// ClientID resolves the caller's client identity from the X-Client-ID header.
// A missing or malformed id is replaced with a fresh one, which is echoed back
// so the client can persist it.
func ClientID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(ClientIDHeader)
		if !identity.Valid(id) {
			id = identity.NewClientID()
		}
		c.Locals(ClientIDLocal, id)
		c.Set(ClientIDHeader, id)
		return c.Next()
	}
}

// ClientIDFrom returns the client id resolved by ClientID.
func ClientIDFrom(c *fiber.Ctx) string {
	if id, ok := c.Locals(ClientIDLocal).(string); ok {
		return id
	}
	return ""
}
