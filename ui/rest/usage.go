package rest

import (
	"github.com/gofiber/fiber/v2"

	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
	"github.com/souqtrack/souqtrack/pkg/utils"
)

type Usage struct {
	Service domainUsage.IUsageUsecase
}

func InitRestUsage(app fiber.Router, service domainUsage.IUsageUsecase) Usage {
	rest := Usage{Service: service}
	app.Get("/usage", rest.GetMonthlyUsage)
	app.Get("/usage/today", rest.GetDailyUsage)
	app.Post("/usage/check-quota", rest.CheckQuota)

	return rest
}

func (handler *Usage) GetMonthlyUsage(c *fiber.Ctx) error {
	summary, err := handler.Service.GetMonthlyUsage(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Monthly usage retrieved",
		Results: summary,
	})
}

func (handler *Usage) GetDailyUsage(c *fiber.Ctx) error {
	summary, err := handler.Service.GetDailyUsageSummary(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Daily usage retrieved",
		Results: summary,
	})
}

func (handler *Usage) CheckQuota(c *fiber.Ctx) error {
	triggered, err := handler.Service.CheckQuotaAndAlert(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Quota check completed",
		Results: fiber.Map{"alert_triggered": triggered},
	})
}
