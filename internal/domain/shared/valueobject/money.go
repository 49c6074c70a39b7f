package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	UGX Currency = "UGX"
	USD Currency = "USD"
)

// DefaultCurrency is the store currency; catalog prices are in shillings
const DefaultCurrency = UGX

var (
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrEmptyCurrency    = errors.New("money: currency cannot be empty")
	ErrDivideByZero     = errors.New("money: division by zero")
	ErrInvalidRate      = errors.New("money: exchange rate must be positive")
)

// Money is an immutable amount in a currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money value
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, ErrEmptyCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

// UGXFromFloat builds a shilling amount from a catalog price
func UGXFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: UGX}
}

// UGXFromDecimal builds a shilling amount
func UGXFromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: UGX}
}

// NewMoneyFromString parses a decimal string such as "12500.50"
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// Zero returns a zero amount in the currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add sums two amounts in the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply scales the amount
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// MultiplyByInt scales the amount by a line quantity
func (m Money) MultiplyByInt(factor int) Money {
	return m.Multiply(decimal.NewFromInt(int64(factor)))
}

// Percent returns pct percent of the amount
func (m Money) Percent(pct decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(pct).Div(decimal.NewFromInt(100)), currency: m.currency}
}

// Divide divides the amount
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ErrDivideByZero
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// Convert converts to another currency given how many units of m's currency
// buy one unit of target, rounding half away from zero to 2 places.
func (m Money) Convert(target Currency, unitsPerTarget decimal.Decimal) (Money, error) {
	if !unitsPerTarget.IsPositive() {
		return Money{}, ErrInvalidRate
	}
	if target == "" {
		return Money{}, ErrEmptyCurrency
	}
	return Money{amount: m.amount.Div(unitsPerTarget).Round(2), currency: target}, nil
}

// Round rounds half away from zero
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Equals reports equal amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan compares two amounts in the same currency
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrCurrencyMismatch
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String formats as "12500.00 UGX"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// StringFixed formats the amount alone with the given number of decimals
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// Float64 returns the amount for APIs that take JSON numbers
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; only the amount is stored, currency has its own column
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
		s = "0"
	case string:
		s = v
	case []byte:
		s = string(v)
	case float64:
		m.amount = decimal.NewFromFloat(v)
		m.defaultCurrency()
		return nil
	case int64:
		m.amount = decimal.NewFromInt(v)
		m.defaultCurrency()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = d
	m.defaultCurrency()
	return nil
}

func (m *Money) defaultCurrency() {
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
}
