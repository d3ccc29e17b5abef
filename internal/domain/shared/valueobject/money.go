// Package valueobject holds the immutable values the ledger domain is
// expressed in. Money keeps amounts as decimals end to end; float
// arithmetic never touches a balance.
package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	KES Currency = "KES" // Kenyan Shilling
	TZS Currency = "TZS" // Tanzanian Shilling
	UGX Currency = "UGX" // Ugandan Shilling
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is what new businesses trade in unless configured
// otherwise.
const DefaultCurrency = KES

// Money is an amount in one currency. Operations never mutate; they
// return fresh values, and mixed-currency arithmetic is refused.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyKES and friends cover the dominant case; most of the ledger
// trades in shillings.
func NewMoneyKES(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: KES}
}

func NewMoneyKESFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: KES}
}

func NewMoneyKESFromString(amount string) (Money, error) {
	return NewMoneyFromString(amount, KES)
}

// Zero is the additive identity in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func ZeroKES() Money { return Zero(KES) }

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) sameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s",
			op, m.currency, other.currency)
	}
	return nil
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for callers that already hold same-currency values,
// such as a payment being applied to its own sale.
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Subtract takes other from m in the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

func (m Money) MustSubtract(other Money) Money {
	diff, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return diff
}

// Equals holds when currency and amount both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String renders "1234.50 KES".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// MarshalJSON emits the amount as a string to keep decimal precision
// over the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}
