package domain

import "github.com/shopspring/decimal"

func init() {
	// The frontend expects plain JSON numbers for money, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// ShareOf returns amount * percent / 100.
func ShareOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}
