package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PesoPlaces is the fixed precision for PHP-denominated amounts.
const PesoPlaces int32 = 2

// Money is a value object representing a PHP-denominated amount at fixed
// 2 decimal-place precision. It is immutable - all operations return new
// Money instances. The system is single-currency; amounts never carry a
// currency code.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal, normalized to 2 decimal places.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(PesoPlaces)}
}

// NewMoneyFromString parses a numeric string into Money.
// Rejects non-numeric input; the boundary serializes amounts as numeric
// strings to avoid binary-float error.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// NewPositiveMoney parses a numeric string and requires the result to be
// strictly positive after 2 dp normalization.
func NewPositiveMoney(s string) (Money, error) {
	m, err := NewMoneyFromString(s)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, fmt.Errorf("amount must be positive, got %s", m.StringFixed())
	}
	return m, nil
}

// Zero returns a zero-value Money.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is strictly positive.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is strictly negative.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount).Round(PesoPlaces)}
}

// Subtract returns a new Money with the difference.
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount).Round(PesoPlaces)}
}

// Negate returns a new Money with the sign reversed.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg()}
}

// Abs returns a new Money with the absolute value.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// Equals returns true if both amounts are equal.
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan returns true if this Money is less than the other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan returns true if this Money is greater than the other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual returns true if this Money is at least the other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// String returns the amount as a fixed 2 dp string.
func (m Money) String() string {
	return m.amount.StringFixed(PesoPlaces)
}

// StringFixed returns the amount as a fixed 2 dp string.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(PesoPlaces)
}

// MarshalJSON serializes the amount as a numeric string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(PesoPlaces))
}

// UnmarshalJSON accepts either a numeric string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var d decimal.Decimal
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("invalid money value: %s", string(data))
		}
		m.amount = d.Round(PesoPlaces)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d.Round(PesoPlaces)
	return nil
}

// Value implements driver.Valuer for database storage.
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(PesoPlaces), nil
}

// Scan implements sql.Scanner for database retrieval.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		m.amount = decimal.NewFromFloat(v).Round(PesoPlaces)
		return nil
	case int64:
		m.amount = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount.Round(PesoPlaces)
	return nil
}
