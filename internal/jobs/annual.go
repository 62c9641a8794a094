package jobs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bancodev/bankbatch/internal/batch"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/model"
	"github.com/bancodev/bankbatch/internal/processor"
)

// Annual builds the annual statement job: all accounts -> aggregator ->
// statement store. run.year is required.
func Annual(cfg *config.Config, stores Stores, params batch.Params) (batch.Job, error) {
	raw := params[batch.ParamRunYear]
	if raw == "" {
		return batch.Job{}, fmt.Errorf("building %s: %s parameter is required", JobAnnualStatement, batch.ParamRunYear)
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return batch.Job{}, fmt.Errorf("building %s: invalid year %q: %w", JobAnnualStatement, raw, err)
	}

	reader := batch.NewSliceReader(stores.Accounts.AllAccounts())
	agg := processor.NewAnnualAggregator(stores.Transactions, year)
	writer := &statementWriter{store: stores.Statements}

	step := batch.NewChunkStep(
		"annualStatementStep",
		reader,
		agg,
		writer,
		cfg.Jobs.Annual.ChunkSize,
		batch.NoTolerance(),
	)

	return batch.Job{Name: JobAnnualStatement, Steps: []batch.Step{step}}, nil
}

// statementWriter persists annual statements through the statement-store
// port.
type statementWriter struct {
	store StatementStore
}

func (w *statementWriter) Write(_ context.Context, chunk []model.AnnualStatement) error {
	return w.store.SaveAnnualStatements(chunk)
}
