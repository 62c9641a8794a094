package model

import "github.com/shopspring/decimal"

// AccountType classifies bank accounts in the legacy core.
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeLoan    AccountType = "LOAN"
)

// Account is one bank account as held by the account master store.
// AccountNumber is unique and immutable; only interest accrual writes
// the balance forward.
type Account struct {
	AccountNumber      string
	Type               AccountType
	Balance            decimal.Decimal // 2-decimal precision
	AnnualInterestRate decimal.Decimal // fraction, 0.03 = 3%
}
