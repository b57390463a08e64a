// Package auth supplies the caller identity to handlers. It is not a security
// boundary: the default resolver trusts a fixed, locally configured user.
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

const userIDLocalsKey = "stepflow.user_id"

// ErrNoSession is returned when no user is signed in.
var ErrNoSession = errors.New("not signed in")

// Resolver extracts the caller's user id from a request.
type Resolver interface {
	Resolve(c fiber.Ctx) (int64, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(c fiber.Ctx) (int64, bool)

func (f ResolverFunc) Resolve(c fiber.Ctx) (int64, bool) {
	return f(c)
}

// Fixed resolves every request to the same user.
type Fixed int64

func (f Fixed) Resolve(fiber.Ctx) (int64, bool) {
	return int64(f), f > 0
}

// Gate stores the resolved caller id for downstream handlers or answers 401.
func Gate(resolver Resolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, ok := resolver.Resolve(c)
		if !ok {
			problem := problems.NewStatusProblem(fiber.StatusUnauthorized).
				WithInstance(c.Path()).
				WithType("unauthorized").
				WithDetail("a signed-in user is required")

			return c.Status(fiber.StatusUnauthorized).JSON(problem)
		}

		c.Locals(userIDLocalsKey, userID)

		return c.Next()
	}
}

// UserID returns the caller id stored by Gate, or 0 outside a gated route.
func UserID(c fiber.Ctx) int64 {
	userID, _ := c.Locals(userIDLocalsKey).(int64)

	return userID
}

// RequireSession is the client-side gate: commands acting on workflows need a
// signed-in user name.
func RequireSession(user string) error {
	if strings.TrimSpace(user) == "" {
		return ErrNoSession
	}

	return nil
}
