package server

import (
	"log"
	"strings"

	"timeclock-backend/internal/audit"
	"timeclock-backend/internal/auth"
	"timeclock-backend/internal/clock"
	"timeclock-backend/internal/config"
	"timeclock-backend/internal/location"
	"timeclock-backend/internal/models"
	"timeclock-backend/internal/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// New builds the app with all routes wired. Split out of main so tests can
// drive the full stack through app.Test.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			// Detail stays server-side, the client gets a generic 500.
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "An unexpected server error occurred",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// Public auth surface
	api.Get("/auth/login", auth.LoginHandler(cfg))
	api.Get("/auth/callback", auth.CallbackHandler(cfg))
	api.Get("/auth/logout", auth.LogoutHandler(cfg))
	api.Get("/auth/me", auth.MeHandler(cfg))
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(cfg))
	api.Post("/auth/token", auth.TokenHandler(cfg))

	// Everything below needs a session
	protected := api.Group("")
	protected.Use(auth.SessionMiddleware(cfg))

	// Clock in/out and own history
	protected.Post("/clockin", clock.ClockInHandler())
	protected.Post("/clockout", clock.ClockOutHandler())
	protected.Get("/clockrecords", clock.MyRecordsHandler())

	// Careworkers need the site list to pick where to clock in
	protected.Get("/location/available", location.AvailableLocationsHandler())

	// Manager-only surface
	manager := protected.Group("")
	manager.Use(auth.RequireRole(models.RoleManager))

	manager.Get("/location", location.ListLocationsHandler())
	manager.Post("/location", location.CreateLocationHandler())
	manager.Put("/location", location.UpdateLocationHandler())
	manager.Delete("/location", location.DeleteLocationHandler())

	manager.Get("/clockrecords/active", clock.ActiveStaffHandler())

	manager.Get("/reports", reports.ReportHandler())
	manager.Get("/reports/export", reports.ExportHandler())

	manager.Get("/audit-logs", audit.ListAuditLogsHandler())
	manager.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	return app
}
