package jobs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bancodev/bankbatch/internal/batch"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/feed"
	"github.com/bancodev/bankbatch/internal/model"
	"github.com/bancodev/bankbatch/internal/processor"
)

// Daily builds the daily transactions job: legacy feed -> validator ->
// processed-transaction store. The feed file is resolved from the optional
// run.date parameter; the returned closer releases it after the run.
func Daily(cfg *config.Config, stores Stores, params batch.Params) (batch.Job, io.Closer, error) {
	fileName := cfg.DailyFeedFile(params[batch.ParamRunDate])
	path := filepath.Join(cfg.DataDir, fileName)

	reader, err := feed.Open(path, feed.Options{Delimiter: delimiterRune(cfg)})
	if err != nil {
		return batch.Job{}, nil, fmt.Errorf("building %s: %w", JobDailyTransactions, err)
	}

	validator := processor.NewValidator(stores.Accounts, nil)
	writer := &processedWriter{store: stores.Transactions}

	step := batch.NewChunkStep(
		"dailyTransactionsStep",
		reader,
		validator,
		writer,
		cfg.Jobs.Daily.ChunkSize,
		batch.SkipPolicy(cfg.Jobs.Daily.SkipLimit),
	)

	return batch.Job{Name: JobDailyTransactions, Steps: []batch.Step{step}}, reader, nil
}

func delimiterRune(cfg *config.Config) rune {
	for _, r := range cfg.Legacy.Delimiter {
		return r
	}
	return ','
}

// processedWriter persists validated transactions through the
// transaction-store port.
type processedWriter struct {
	store TransactionStore
}

func (w *processedWriter) Write(_ context.Context, chunk []model.ProcessedTransaction) error {
	return w.store.SaveProcessedTransactions(chunk)
}
