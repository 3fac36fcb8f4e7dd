package validations

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
	pkgError "github.com/souqtrack/souqtrack/pkg/error"
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

func ValidateInterval(interval string) error {
	err := validation.Validate(interval,
		validation.In(
			domainPriceHistory.IntervalHourly,
			domainPriceHistory.IntervalDaily,
			domainPriceHistory.IntervalWeekly,
		),
	)
	if err != nil {
		return pkgError.ValidationError("interval: " + err.Error())
	}
	return nil
}

func ValidateWindowDays(days int) error {
	if err := validation.Validate(days, validation.Min(0), validation.Max(3650)); err != nil {
		return pkgError.ValidationError("days: " + err.Error())
	}
	return nil
}
