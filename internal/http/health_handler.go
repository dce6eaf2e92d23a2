package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
)

// HealthStatus is the body of the health check.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DBStatus  string    `json:"db_status"`
}

// HealthIndexAction reports whether the API and its database are reachable. A failed
// ping answers 503 so load balancers take the instance out of rotation.
func HealthIndexAction(ctx *cartridge.Context) error {
	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		DBStatus:  "ok",
	}

	if err := pingDatabase(ctx); err != nil {
		ctx.Logger.Error("Database health check failed", slog.Any("error", err))
		health.Status = "degraded"
		health.DBStatus = "error"
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(health)
	}

	return ctx.JSON(health)
}

func pingDatabase(ctx *cartridge.Context) error {
	db := ctx.DB()
	if db == nil {
		return fiber.ErrServiceUnavailable
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx.UserContext())
}
