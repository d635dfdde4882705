package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"htmlpdf/internal/config"
	"htmlpdf/internal/handlers"
	"htmlpdf/internal/logging"
	"htmlpdf/internal/pdf"
)

var validRoutes = []string{"GET /", "POST /html-to-pdf", "GET /test-pdf"}

// SetupApp creates and configures a new Fiber app instance. The body limit
// rejects oversized payloads at the transport layer, before any handler runs.
func SetupApp(cfg config.Config, gen *pdf.Generator, redis *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		BodyLimit:             cfg.Limits.MaxBodyBytes,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": msg,
			})
		},
	})

	RegisterMiddleware(app)
	RegisterRoutes(app, cfg, gen, redis)

	// Ensure unknown paths return JSON with the valid route list.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Not Found",
			"routes": validRoutes,
		})
	})

	return app
}

// RegisterRoutes mounts all route handlers to the app.
func RegisterRoutes(app *fiber.App, cfg config.Config, gen *pdf.Generator, redis *redis.Client) {
	svc := handlers.NewPDFService(cfg, gen, redis)

	app.Get("/", svc.HandleIndex)
	app.Post("/html-to-pdf", svc.HandleConversion)
	app.Get("/test-pdf", svc.HandleTestPDF)
}
