package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bancodev/bankbatch/internal/batch"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/jobs"
	"github.com/bancodev/bankbatch/internal/runlog"
	"github.com/bancodev/bankbatch/internal/store"
)

const (
	configFile   = "bankbatch.yaml"
	accountsFile = "accounts.csv"
)

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a batch job",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", configFile, "configuration file")

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Validate the daily legacy transaction feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := batch.Params{}
			if date != "" {
				params[batch.ParamRunDate] = date
			}
			return runJob(cmd.Context(), configPath, jobs.JobDailyTransactions, params)
		},
	}
	daily.Flags().StringVar(&date, "date", "", "feed date (YYYY-MM-DD), selects transactions_<date>.csv")

	var period string
	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Accrue monthly interest on all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := batch.Params{batch.ParamRunPeriod: period}
			return runJob(cmd.Context(), configPath, jobs.JobMonthlyInterest, params)
		},
	}
	monthly.Flags().StringVar(&period, "period", "", "accrual period (YYYY-MM) (required)")
	_ = monthly.MarkFlagRequired("period")

	var year string
	annual := &cobra.Command{
		Use:   "annual",
		Short: "Generate annual statements for all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := batch.Params{batch.ParamRunYear: year}
			return runJob(cmd.Context(), configPath, jobs.JobAnnualStatement, params)
		},
	}
	annual.Flags().StringVar(&year, "year", "", "statement year (required)")
	_ = annual.MarkFlagRequired("year")

	cmd.AddCommand(daily, monthly, annual)
	return cmd
}

func runJob(ctx context.Context, configPath, jobName string, params batch.Params) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	accounts, err := store.LoadAccounts(filepath.Join(cfg.DataDir, accountsFile))
	if err != nil {
		return err
	}
	mem := store.NewMemory(accounts)
	stores := jobs.Stores{Accounts: mem, Transactions: mem, Statements: mem}

	job, closer, err := jobs.Build(jobName, cfg, stores, params)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	runner := batch.NewRunner(batch.NewLogListener(log), runlog.NewRecorder(cfg.LogsDir))

	exec, err := runner.Run(ctx, job, params)
	if err != nil {
		return err
	}

	// Committed chunks are durable even when a later chunk failed, so the
	// export runs regardless of the job's final status.
	if err := mem.Export(cfg.DataDir); err != nil {
		return err
	}

	if exec.Status == batch.StatusFailed {
		return fmt.Errorf("job %s failed: %w", jobName, exec.Err)
	}
	return nil
}

// loadConfig reads the named file, falling back to built-in defaults when it
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
