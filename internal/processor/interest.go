package processor

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bancodev/bankbatch/internal/model"
)

var twelve = decimal.NewFromInt(12)

// InterestCalculator accrues one month of simple interest per account:
// interest = round2(balance * annualRate/12). It assumes well-formed
// accounts and has no anomaly concept.
type InterestCalculator struct {
	period string // "YYYY-MM" run parameter
}

// NewInterestCalculator creates a calculator for one accrual period.
func NewInterestCalculator(period string) *InterestCalculator {
	return &InterestCalculator{period: period}
}

// Process implements batch.Processor.
func (c *InterestCalculator) Process(_ context.Context, acc model.Account) (model.InterestLedgerEntry, error) {
	return c.Accrue(acc), nil
}

// Accrue computes the ledger entry for one account.
func (c *InterestCalculator) Accrue(acc model.Account) model.InterestLedgerEntry {
	monthlyRate := acc.AnnualInterestRate.Div(twelve)
	interest := model.Round2(acc.Balance.Mul(monthlyRate))
	return model.InterestLedgerEntry{
		AccountNumber:  acc.AccountNumber,
		PeriodYyyymm:   c.period,
		InterestAmount: interest,
		NewBalance:     model.Round2(acc.Balance.Add(interest)),
	}
}
