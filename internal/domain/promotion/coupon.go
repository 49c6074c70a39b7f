package promotion

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ugmart/storefront/internal/domain/shared"
)

var (
	upper       = cases.Upper(language.Und)
	codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)
	hundred     = decimal.NewFromInt(100)
)

// Coupon is a percentage discount code managed by admins
type Coupon struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	UsageLimit int             `json:"usageLimit"`
	UsageCount int             `json:"usageCount"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Exhausted reports whether a limited coupon has been used up
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// Expired reports whether the coupon ended before now
func (c *Coupon) Expired(now time.Time) bool {
	return !c.EndDate.IsZero() && c.EndDate.Before(now)
}

// NormalizeCode trims and upper-cases a code typed by a shopper
func NormalizeCode(code string) string {
	return upper.String(strings.TrimSpace(code))
}

// Application is the outcome of applying a code at checkout
type Application struct {
	Coupon     Coupon          `json:"coupon"`
	Percentage decimal.Decimal `json:"percentage"`
	Message    string          `json:"message"`
}

// Evaluate checks a shopper-entered code against the available coupons
func Evaluate(available []Coupon, code string, now time.Time) (*Application, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, shared.InvalidInput("Please enter a coupon code")
	}

	var found *Coupon
	for i := range available {
		if NormalizeCode(available[i].Code) == code {
			found = &available[i]
			break
		}
	}
	if found == nil {
		return nil, shared.InvalidInput("Invalid discount coupon")
	}
	if found.Exhausted() {
		return nil, shared.InvalidInput("Coupon usage limit reached!")
	}
	if found.Expired(now) {
		return nil, shared.InvalidInput("Discount coupon has expired!")
	}

	return &Application{
		Coupon:     *found,
		Percentage: found.Percentage,
		Message:    fmt.Sprintf("Coupon %s applied! %s%% off", code, found.Percentage.String()),
	}, nil
}

// Draft is the admin form for a new coupon
type Draft struct {
	Code       string
	Percentage decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	UsageLimit int
}

// Normalize upper-cases the code
func (d *Draft) Normalize() {
	d.Code = NormalizeCode(d.Code)
}

// Validate checks the admin form
func (d *Draft) Validate() error {
	switch {
	case !codePattern.MatchString(d.Code):
		return shared.InvalidInput("Coupon code must be 3-32 letters, digits, dashes or underscores")
	case !d.Percentage.IsPositive() || d.Percentage.GreaterThan(hundred):
		return shared.InvalidInput("Percentage must be between 1 and 100")
	case d.StartDate.IsZero() || d.EndDate.IsZero():
		return shared.InvalidInput("Start and end dates are required")
	case !d.EndDate.After(d.StartDate):
		return shared.InvalidInput("End date must be after start date")
	case d.UsageLimit < 0:
		return shared.InvalidInput("Usage limit cannot be negative")
	}
	return nil
}

// ValidCode reports whether a normalized code has an acceptable shape
func ValidCode(code string) bool {
	return codePattern.MatchString(NormalizeCode(code))
}
