package processor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bancodev/bankbatch/internal/model"
	"github.com/bancodev/bankbatch/internal/period"
)

// TransactionHistory provides an account's processed transactions within a
// closed date range.
type TransactionHistory interface {
	FindTransactionsByAccountAndDateRange(number string, start, end time.Time) []model.ProcessedTransaction
}

// AnnualAggregator summarizes one calendar year of activity per account.
// Deposits sum the positive amounts, withdrawals the absolute value of the
// negative ones. EndBalance is the account's current balance, not a
// year-end reconstruction.
type AnnualAggregator struct {
	history TransactionHistory
	year    int
}

// NewAnnualAggregator creates an aggregator for one target year.
func NewAnnualAggregator(history TransactionHistory, year int) *AnnualAggregator {
	return &AnnualAggregator{history: history, year: year}
}

// Process implements batch.Processor.
func (a *AnnualAggregator) Process(_ context.Context, acc model.Account) (model.AnnualStatement, error) {
	return a.Aggregate(acc), nil
}

// Aggregate computes the statement for one account. Pure with respect to
// the account and its in-year transaction set: identical inputs yield an
// identical statement.
func (a *AnnualAggregator) Aggregate(acc model.Account) model.AnnualStatement {
	start, end := period.YearRange(a.year)
	txns := a.history.FindTransactionsByAccountAndDateRange(acc.AccountNumber, start, end)

	deposits := decimal.Zero
	withdrawals := decimal.Zero
	for _, t := range txns {
		if t.Amount.IsPositive() {
			deposits = deposits.Add(t.Amount)
		} else {
			withdrawals = withdrawals.Add(t.Amount)
		}
	}

	return model.AnnualStatement{
		AccountNumber:    acc.AccountNumber,
		Year:             a.year,
		TotalDeposits:    model.Round2(deposits),
		TotalWithdrawals: model.Round2(withdrawals.Abs()),
		EndBalance:       model.Round2(acc.Balance),
	}
}
