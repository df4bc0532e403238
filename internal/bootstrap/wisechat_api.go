package bootstrap

import (
	"context"
	"strings"
	"time"

	"wisechat_server/adapter/in/http"
	"wisechat_server/config"
	"wisechat_server/infra/middleware"
	"wisechat_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
)

// messageWritesPerMinute bounds message creation per user; each write may
// trigger a remote completion.
const messageWritesPerMinute = 30

func NewAPI(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := newApp(cfg)

	// Health check and metrics (no auth required)
	checks := map[string]http.HealthChecker{"postgres": deps.DB}
	if deps.Redis != nil {
		checks["redis"] = http.PingFunc(func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() })
	}
	http.NewHealthHandler(checks, deps.Completion.IsAvailable).Register(app)
	app.Get("/metrics", deps.Metrics.Handler())

	// API routes (with auth)
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	http.NewAnalyzeHandler(deps.Pipeline).Register(api)

	chatHandler := http.NewChatHandler(deps.ChatService, deps.MessageService)
	chatHandler.Register(api)
	chatHandler.RegisterMessageWrites(api, middleware.UserRateLimit(messageWritesPerMinute, time.Minute))

	http.NewNotificationHandler(deps.NotificationService).Register(api)

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		AppName:               "wisechat",

		// go-json: 표준 encoding/json 대비 빠른 JSON 직렬화
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Body 제한 (메모리 보호)
		BodyLimit: 1 * 1024 * 1024,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.RequestID())     // 1. Request ID
	app.Use(middleware.RequestLogger()) // 2. Request logging, writes handled errors
	app.Use(middleware.Recover())       // 3. Panic recovery
	app.Use(helmet.New())               // 4. Security headers
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// AllowCredentials:true requires explicit origins (not "*")
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	return app
}
