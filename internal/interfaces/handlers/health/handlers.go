package health

import (
	"context"
	"strconv"
	"time"

	healthsvc "foundersbook-backend/internal/application/health"
	"foundersbook-backend/internal/middleware"
	"foundersbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "foundersbook-api"

// Handlers holds dependencies for health endpoints. Rdb and DB may be nil.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
}

// Root GET /
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.SendString("API is running...")
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	r := healthsvc.Collect(context.Background(), h.Rdb, h.DB)
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       r.Status,
		"runtime":      r.Runtime,
		"traffic":      r.Traffic,
		"dependencies": r.Dependencies,
	})
}

// Reset GET /health/reset clears the traffic counters. The admin key comes
// from ?key= or the x-admin-key header.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		key = c.Get("x-admin-key")
	}
	if h.HealthAdminKey == "" || key != h.HealthAdminKey {
		return response.Error(c, fiber.StatusForbidden, "Unauthorized")
	}
	if h.Rdb == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Redis is not configured")
	}
	ctx := context.Background()
	if err := h.Rdb.Del(ctx, middleware.TrafficKeys...).Err(); err != nil {
		return response.FromError(c, err)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.FromError(c, err)
	}
	return response.Message(c, fiber.StatusOK, "Stats reset successfully")
}
