// Package money holds the currency helpers shared by quoting and submission.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero at the cent.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Amount is a currency value rendered as a JSON number with two decimals.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: Round2(d)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	data = bytes.Trim(data, `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", data, err)
	}
	a.Decimal = d
	return nil
}
