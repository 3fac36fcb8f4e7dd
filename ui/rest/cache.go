package rest

import (
	"github.com/gofiber/fiber/v2"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
	"github.com/souqtrack/souqtrack/pkg/utils"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(app fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Post("/cache/invalidate", rest.Invalidate)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

type invalidateRequest struct {
	Pattern string `json:"pattern"`
}

func (handler *Cache) Invalidate(c *fiber.Ctx) error {
	var request invalidateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	removed, err := handler.Service.Invalidate(c.UserContext(), request.Pattern)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache invalidated",
		Results: fiber.Map{"removed": removed, "pattern": request.Pattern},
	})
}
