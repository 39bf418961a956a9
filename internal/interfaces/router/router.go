package router

import (
	"certlife-backend/internal/certificates"
	"certlife-backend/internal/config"
	"certlife-backend/internal/infrastructure/database"
	"certlife-backend/internal/interfaces/handlers/health"
	"certlife-backend/internal/interfaces/handlers/lifecycle"
	"certlife-backend/internal/interfaces/handlers/verification"
	"certlife-backend/internal/jobs"
	"certlife-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with global middleware and all engine
// routes, plus the database and Redis handles the caller owns.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opts)
	queue := &jobs.RedisQueue{Client: rdb, Key: cfg.QueueKey}

	codec := &certificates.TokenCodec{Secret: []byte(cfg.TokenSecret)}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	verifyHandlers := &verification.Handlers{
		Verifier: &certificates.Verifier{DB: db, Codec: codec},
	}
	app.Get("/verify/:certificate_uuid", verifyHandlers.Verify)

	lifecycleHandlers := &lifecycle.Handlers{Queue: queue}
	app.Post("/certificates/:consultant/revoke", lifecycleHandlers.Revoke)
	app.Post("/certificates/:consultant/reissue", lifecycleHandlers.Reissue)

	return app, db, rdb, nil
}
