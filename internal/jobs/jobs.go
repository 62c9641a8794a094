// Package jobs composes the three shipped batch jobs from their sources,
// processors, and sinks. Run parameters are resolved once here, at job
// build time, and passed explicitly down the chain.
package jobs

import (
	"fmt"
	"io"
	"time"

	"github.com/bancodev/bankbatch/internal/batch"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/model"
)

// Job names recognized by the trigger surface.
const (
	JobDailyTransactions = "dailyTransactions"
	JobMonthlyInterest   = "monthlyInterest"
	JobAnnualStatement   = "annualStatement"
)

// AccountStore is the account master port.
type AccountStore interface {
	FindAccountByNumber(number string) (model.Account, bool)
	AllAccounts() []model.Account
	ApplyInterest(entries []model.InterestLedgerEntry) error
}

// TransactionStore is the processed-transaction port.
type TransactionStore interface {
	SaveProcessedTransactions(batch []model.ProcessedTransaction) error
	FindTransactionsByAccountAndDateRange(number string, start, end time.Time) []model.ProcessedTransaction
}

// StatementStore is the annual-statement port.
type StatementStore interface {
	SaveAnnualStatements(batch []model.AnnualStatement) error
}

// Stores aggregates the persistence ports injected at composition time.
type Stores struct {
	Accounts     AccountStore
	Transactions TransactionStore
	Statements   StatementStore
}

// Build constructs the named job with its parameters bound. The returned
// closer releases the job's source, if it holds one, and may be nil.
func Build(name string, cfg *config.Config, stores Stores, params batch.Params) (batch.Job, io.Closer, error) {
	switch name {
	case JobDailyTransactions:
		return Daily(cfg, stores, params)
	case JobMonthlyInterest:
		job, err := Monthly(cfg, stores, params)
		return job, nil, err
	case JobAnnualStatement:
		job, err := Annual(cfg, stores, params)
		return job, nil, err
	}
	return batch.Job{}, nil, fmt.Errorf("unknown job %q", name)
}
