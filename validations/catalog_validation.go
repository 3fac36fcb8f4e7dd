package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainCatalog "github.com/souqtrack/souqtrack/domains/catalog"
	pkgError "github.com/souqtrack/souqtrack/pkg/error"
)

// asinRule matches the 10-character Amazon Standard Identification Number.
var asinRule = []validation.Rule{
	validation.Required,
	validation.Length(10, 10),
	validation.Match(asinPattern),
}

func ValidateASIN(asin string) error {
	if err := validation.Validate(asin, asinRule...); err != nil {
		return pkgError.ValidationError("asin: " + err.Error())
	}
	return nil
}

func ValidateSearchRequest(ctx context.Context, request domainCatalog.SearchRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Query, validation.Required, validation.Length(1, 200)),
		validation.Field(&request.Page, validation.Min(1)),
		validation.Field(&request.Sort, validation.In(sortValues()...)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateCategoryRequest(ctx context.Context, request domainCatalog.CategoryRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Slug, validation.Required, validation.Length(1, 100)),
		validation.Field(&request.Page, validation.Min(1)),
		validation.Field(&request.Sort, validation.In(sortValues()...)),
		validation.Field(&request.Limit, validation.Min(0), validation.Max(100)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateDealsRequest(ctx context.Context, request domainCatalog.DealsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Page, validation.Min(1)),
		validation.Field(&request.MinDiscount, validation.Min(0), validation.Max(99)),
		validation.Field(&request.Sort, validation.In(sortValues()...)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func sortValues() []interface{} {
	return []interface{}{"", "price_low_to_high", "price_high_to_low", "average_review", "most_recent", "featured"}
}
