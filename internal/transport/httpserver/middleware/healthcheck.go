// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

// readinessTimeout bounds the backend ping behind /readyz.
const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez       - Liveness probe (app is running)
//   - GET /healthcheck - Liveness alias kept for existing monitors
//   - GET /readyz      - Readiness probe (cache backend reachable)
//
// A nil store means lookups are not memoized and readiness only reflects
// that the process is up. This middleware should be registered BEFORE other routes.
func NewHealthCheck(store Pinger) fiber.Handler {
	live := func(_ *fiber.Ctx) bool {
		return true
	}

	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe:    live,

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if store == nil {
				return true
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
			defer cancel()

			return store.Ping(ctx) == nil
		},
	})
}

// NewLegacyHealthCheck serves /healthcheck as a liveness probe.
func NewLegacyHealthCheck() fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/healthcheck",
		ReadinessEndpoint: "/healthcheck",
	})
}
