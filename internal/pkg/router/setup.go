package router

import (
	"github.com/gofiber/fiber/v2"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers the HTTP and API routes. The HTTP router goes first
// so health checks stay outside the /api rate limit.
func InstallRouter(app *fiber.App, deps *Dependencies) {
	setup(app, NewHttpRouter(), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
