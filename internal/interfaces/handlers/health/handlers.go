package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers reports process liveness plus database and queue connectivity.
type Handlers struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

func (h *Handlers) JSON(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if h.DB != nil {
		dbStatus = "ok"
		if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
		}
	}

	redisStatus := "disabled"
	if h.Rdb != nil {
		redisStatus = "ok"
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	status := fiber.StatusOK
	if dbStatus == "down" || redisStatus == "down" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   "up",
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
