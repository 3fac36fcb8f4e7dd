package rest

import (
	"github.com/gofiber/fiber/v2"

	domainCatalog "github.com/souqtrack/souqtrack/domains/catalog"
	"github.com/souqtrack/souqtrack/pkg/utils"
	"github.com/souqtrack/souqtrack/validations"
)

type Catalog struct {
	Service domainCatalog.ICatalogUsecase
}

func InitRestCatalog(app fiber.Router, service domainCatalog.ICatalogUsecase) Catalog {
	rest := Catalog{Service: service}
	app.Get("/products/:asin", rest.GetProduct)
	app.Get("/products/:asin/reviews", rest.GetReviews)
	app.Get("/search", rest.Search)
	app.Get("/categories/:slug", rest.GetCategory)
	app.Get("/deals", rest.GetDeals)

	return rest
}

func (handler *Catalog) GetProduct(c *fiber.Ctx) error {
	asin := c.Params("asin")
	utils.PanicIfNeeded(validations.ValidateASIN(asin))

	product, meta, err := handler.Service.GetProduct(c.UserContext(), asin)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Product retrieved",
		Results: fiber.Map{"product": product, "meta": meta},
	})
}

func (handler *Catalog) GetReviews(c *fiber.Ctx) error {
	asin := c.Params("asin")
	utils.PanicIfNeeded(validations.ValidateASIN(asin))

	reviews, meta, err := handler.Service.GetReviews(c.UserContext(), asin)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Reviews retrieved",
		Results: fiber.Map{"reviews": reviews, "meta": meta},
	})
}

func (handler *Catalog) Search(c *fiber.Ctx) error {
	request := domainCatalog.SearchRequest{
		Query: c.Query("query"),
		Page:  c.QueryInt("page", 1),
		Sort:  c.Query("sort"),
	}
	utils.PanicIfNeeded(validations.ValidateSearchRequest(c.UserContext(), request))

	page, meta, err := handler.Service.Search(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Search results retrieved",
		Results: fiber.Map{"results": page, "meta": meta},
	})
}

func (handler *Catalog) GetCategory(c *fiber.Ctx) error {
	request := domainCatalog.CategoryRequest{
		Slug:  c.Params("slug"),
		Page:  c.QueryInt("page", 1),
		Sort:  c.Query("sort"),
		Limit: c.QueryInt("limit", 0),
	}
	utils.PanicIfNeeded(validations.ValidateCategoryRequest(c.UserContext(), request))

	page, meta, err := handler.Service.GetCategory(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Category listing retrieved",
		Results: fiber.Map{"results": page, "meta": meta},
	})
}

func (handler *Catalog) GetDeals(c *fiber.Ctx) error {
	request := domainCatalog.DealsRequest{
		Category:    c.Query("category"),
		Page:        c.QueryInt("page", 1),
		MinDiscount: c.QueryInt("min_discount", 0),
		Sort:        c.Query("sort"),
	}
	utils.PanicIfNeeded(validations.ValidateDealsRequest(c.UserContext(), request))

	page, meta, err := handler.Service.GetDeals(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Deals retrieved",
		Results: fiber.Map{"results": page, "meta": meta},
	})
}
