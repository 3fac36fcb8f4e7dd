package rest

import (
	"github.com/gofiber/fiber/v2"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
	"github.com/souqtrack/souqtrack/pkg/utils"
	"github.com/souqtrack/souqtrack/validations"
)

type PriceHistory struct {
	Service domainPriceHistory.IPriceHistoryUsecase
}

func InitRestPriceHistory(app fiber.Router, service domainPriceHistory.IPriceHistoryUsecase) PriceHistory {
	rest := PriceHistory{Service: service}
	app.Get("/products/:asin/price-history", rest.GetPriceHistory)
	app.Get("/products/:asin/price-drop", rest.GetPriceDrop)
	app.Get("/products/:asin/price-trend", rest.GetPriceTrend)

	return rest
}

func (handler *PriceHistory) GetPriceHistory(c *fiber.Ctx) error {
	asin := c.Params("asin")
	days := c.QueryInt("days", 0)
	interval := c.Query("interval", domainPriceHistory.IntervalDaily)

	utils.PanicIfNeeded(validations.ValidateASIN(asin))
	utils.PanicIfNeeded(validations.ValidateWindowDays(days))
	utils.PanicIfNeeded(validations.ValidateInterval(interval))

	stats, err := handler.Service.GetPriceHistory(c.UserContext(), asin, days, interval)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Price history retrieved",
		Results: stats,
	})
}

func (handler *PriceHistory) GetPriceDrop(c *fiber.Ctx) error {
	asin := c.Params("asin")
	threshold := c.QueryFloat("threshold", 5)

	utils.PanicIfNeeded(validations.ValidateASIN(asin))

	result, err := handler.Service.IsNearAllTimeLow(c.UserContext(), asin, threshold)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Price drop check completed",
		Results: result,
	})
}

func (handler *PriceHistory) GetPriceTrend(c *fiber.Ctx) error {
	asin := c.Params("asin")
	days := c.QueryInt("days", 7)

	utils.PanicIfNeeded(validations.ValidateASIN(asin))
	utils.PanicIfNeeded(validations.ValidateWindowDays(days))

	trend, err := handler.Service.GetPriceTrend(c.UserContext(), asin, days)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Price trend retrieved",
		Results: fiber.Map{"trend_percent": trend, "days": days},
	})
}
