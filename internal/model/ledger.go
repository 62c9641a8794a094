package model

import "github.com/shopspring/decimal"

// InterestLedgerEntry records one month of accrued interest for an account.
// NewBalance == Round2(account balance + InterestAmount).
type InterestLedgerEntry struct {
	AccountNumber  string
	PeriodYyyymm   string // "YYYY-MM", supplied as a run parameter
	InterestAmount decimal.Decimal
	NewBalance     decimal.Decimal
}
