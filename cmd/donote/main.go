package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	flog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/donote/donote/app/repository"
	"github.com/donote/donote/internal/pkg/cache"
	"github.com/donote/donote/internal/pkg/database"
	"github.com/donote/donote/internal/pkg/env"
	"github.com/donote/donote/internal/pkg/middleware"
	"github.com/donote/donote/internal/pkg/router"
	"github.com/donote/donote/internal/pkg/scheduler"
)

func main() {
	app, deps := NewApplication()

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}

	var manager *scheduler.Manager
	if cfg := scheduler.ConfigFromEnv(); cfg.Enabled {
		manager = scheduler.NewManager(deps.Settlement, cfg.Interval)
		manager.Start()
	}

	go shutdownOnSignal(app)

	if err := serve(app, ln, manager); err != nil {
		log.Fatal(err)
	}
}

// serve blocks until the server stops, then stops the scheduler and waits
// for an in-flight settlement run.
func serve(app *fiber.App, ln net.Listener, manager *scheduler.Manager) error {
	err := app.Listener(ln)
	if manager != nil {
		manager.Stop()
	}
	return err
}

func shutdownOnSignal(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	flog.Info("[Server] Shutting down...")
	if err := app.Shutdown(); err != nil {
		flog.Errorf("[Server] Shutdown failed: %v", err)
	}
}

func NewApplication() (*fiber.App, *router.Dependencies) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/donote to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	// recovery, logging and security headers on every response
	app.Use(recover.New(), logger.New(), middleware.SecurityHeaders())

	// fiber metrics
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): password,
			},
		}), monitor.New())
	} else {
		flog.Warn("[Metrics] METRICS_PASSWORD is not set, /metrics disabled")
	}

	// SWAGGER / OPENAPI
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	} else {
		flog.Warn("[Docs] public/docs not found, API docs disabled")
	}

	// ROUTER
	deps := router.NewDependencies(context.Background())
	router.InstallRouter(app, deps)

	return app, deps
}
