package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/souqtrack/souqtrack/pkg/utils"
)

// Pinger reports whether the key-value cache is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	cache Pinger
	start time.Time
}

func InitRestHealth(app fiber.Router, cache Pinger) Health {
	handler := Health{cache: cache, start: time.Now()}
	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	cacheStatus := "ok"
	if h.cache != nil {
		if err := h.cache.Ping(c.UserContext()); err != nil {
			cacheStatus = "unreachable"
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service healthy",
		Results: fiber.Map{
			"uptime_seconds": int(time.Since(h.start).Seconds()),
			"cache":          cacheStatus,
		},
	})
}
