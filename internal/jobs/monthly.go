package jobs

import (
	"context"
	"fmt"

	"github.com/bancodev/bankbatch/internal/batch"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/model"
	"github.com/bancodev/bankbatch/internal/period"
	"github.com/bancodev/bankbatch/internal/processor"
)

// Monthly builds the monthly interest job: all accounts -> interest
// calculator -> ledger + balance write-forward. run.period is required.
func Monthly(cfg *config.Config, stores Stores, params batch.Params) (batch.Job, error) {
	p := params[batch.ParamRunPeriod]
	if p == "" {
		return batch.Job{}, fmt.Errorf("building %s: %s parameter is required", JobMonthlyInterest, batch.ParamRunPeriod)
	}
	if _, _, err := period.Parse(p); err != nil {
		return batch.Job{}, fmt.Errorf("building %s: %w", JobMonthlyInterest, err)
	}

	reader := batch.NewSliceReader(stores.Accounts.AllAccounts())
	calc := processor.NewInterestCalculator(p)
	writer := &interestWriter{store: stores.Accounts}

	step := batch.NewChunkStep(
		"monthlyInterestStep",
		reader,
		calc,
		writer,
		cfg.Jobs.Monthly.ChunkSize,
		batch.RetryPolicy(cfg.Jobs.Monthly.RetryLimit),
	)

	return batch.Job{Name: JobMonthlyInterest, Steps: []batch.Step{step}}, nil
}

// interestWriter commits a chunk's two effects, ledger rows and balance
// updates, as one logical unit through the account-store port.
type interestWriter struct {
	store AccountStore
}

func (w *interestWriter) Write(_ context.Context, chunk []model.InterestLedgerEntry) error {
	return w.store.ApplyInterest(chunk)
}
