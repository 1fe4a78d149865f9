package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fraction digits kept for prices and areas.
const AmountScale = 2

// Amount is an exact decimal with two fraction digits. It is encoded as a
// JSON string ("120000.00") and maps to NUMERIC columns without passing
// through float64.
type Amount struct {
	decimal.Decimal
}

// ParseAmount parses a decimal string such as "85.50".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// MustAmount is ParseAmount for literals; it panics on malformed input.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) String() string {
	return a.StringFixed(AmountScale)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}
