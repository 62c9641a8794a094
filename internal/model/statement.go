package model

import "github.com/shopspring/decimal"

// AnnualStatement summarizes one account's activity for a calendar year.
// Recomputed fresh each run; never accumulated across runs.
type AnnualStatement struct {
	AccountNumber    string
	Year             int
	TotalDeposits    decimal.Decimal // sum of positive in-year amounts, >= 0
	TotalWithdrawals decimal.Decimal // abs of sum of negative in-year amounts, >= 0
	EndBalance       decimal.Decimal // account's current balance, rounded
}
