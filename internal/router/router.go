package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skillcam-io/skillcam-api/internal/config"
	"github.com/skillcam-io/skillcam-api/internal/handler"
	"github.com/skillcam-io/skillcam-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler     *handler.HealthHandler
	WaitlistHandler   *handler.WaitlistHandler
	UserHandler       *handler.UserHandler
	SubmissionHandler *handler.SubmissionHandler
	EvaluationHandler *handler.EvaluationHandler
	FeedbackHandler   *handler.FeedbackHandler
	UploadHandler     *handler.UploadHandler
	AuthMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(api)
	}

	// Waitlist signup is the only unauthenticated business route.
	if deps.WaitlistHandler != nil {
		deps.WaitlistHandler.Register(api)
	}

	authMiddleware := deps.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", authMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", authMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.EvaluationHandler != nil {
		evaluations := api.Group("/evaluations", authMiddleware)
		deps.EvaluationHandler.Register(evaluations)
	}

	if deps.FeedbackHandler != nil {
		feedback := api.Group("/feedback", authMiddleware)
		deps.FeedbackHandler.Register(feedback)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", authMiddleware)
		deps.UploadHandler.Register(uploads)
	}
}
