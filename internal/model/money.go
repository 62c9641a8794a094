package model

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to 2 decimal places, half up.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
