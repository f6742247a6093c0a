package bootstrap

import (
	"strings"

	"sms_classifier/adapter/in/http"
	"sms_classifier/config"
	"sms_classifier/core/port/out"
	"sms_classifier/infra/middleware"
	"sms_classifier/pkg/logger"
	"sms_classifier/pkg/ratelimit"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the HTTP server with its own dependencies.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}
	return NewAPIWithDeps(cfg, deps, nil), cleanup, nil
}

// NewAPIWithDeps builds the HTTP server on shared dependencies. fallback
// receives new-message triggers when no Redis stream is configured; with
// neither, stored messages wait for the worker's next run.
func NewAPIWithDeps(cfg *config.Config, deps *Dependencies, fallback out.ClassifyTrigger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
		ReadBufferSize:        16384,
		ServerHeader:          "",
		DisableDefaultDate:    true,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(corsConfig(cfg)))

	// Health check (no auth required)
	var checks []http.ReadinessCheck
	if deps.DB != nil {
		checks = append(checks, http.PostgresCheck(deps.DB))
	}
	if deps.Redis != nil {
		checks = append(checks, http.RedisCheck(deps.Redis))
	}
	if deps.Mongo != nil {
		checks = append(checks, http.MongoCheck(deps.Mongo))
	}
	http.NewHealthHandler(checks...).Register(app)

	var classifyMiddleware []fiber.Handler
	if deps.Redis != nil && cfg.ClassifyRateLimit > 0 {
		limiter := ratelimit.NewSlidingWindowLimiter(deps.Redis, cfg.ClassifyRateLimit, cfg.ClassifyRateBurst)
		classifyMiddleware = append(classifyMiddleware, middleware.RateLimit(limiter, "classify"))
	}

	classifyHandler := http.NewClassifyHandler(deps.ClassificationService)
	classifyHandler.Register(app, classifyMiddleware...)

	api := app.Group("/api/v1")
	classifyHandler.Register(api, classifyMiddleware...)

	var backend http.BackendChecker
	if deps.BackendChecker != nil {
		backend = deps.BackendChecker
	}
	http.NewStatsHandler(deps.Messages, deps.Tracker, backend, string(deps.Mode)).Register(api)

	if deps.HasStore() {
		trigger := deps.Trigger
		if trigger == nil {
			trigger = fallback
		}
		messageHandler := http.NewMessageHandler(deps.Messages, trigger, deps.FeedbackService, deps.Heuristic)
		messageHandler.Register(api, middleware.JWTAuth(cfg.JWTSecret))
	} else {
		logger.Warn("Message routes disabled: no database configured")
	}

	logger.Info("API routes registered (inference mode %s)", deps.Mode)
	return app
}

func corsConfig(cfg *config.Config) cors.Config {
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		// Mobile clients send no Origin; browsers only in development.
		allowOrigins = "http://localhost:3000,http://localhost:5173"
		if cfg.IsProduction() {
			allowOrigins = "*"
		}
	}
	return cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}
}
