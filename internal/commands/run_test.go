package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bancodev/bankbatch/internal/commands"
	"github.com/bancodev/bankbatch/internal/config"
	"github.com/bancodev/bankbatch/internal/store"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := commands.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// workDir lays out a working directory with a config file pointing at
// absolute data and log paths, plus an account master.
func workDir(t *testing.T) (configPath, dataDir, logsDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	logsDir = filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.LogsDir = logsDir
	configPath = filepath.Join(dir, "bankbatch.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	accounts := "account_number,type,balance,annual_interest_rate\n" +
		"1,SAVINGS,150000.00,0.03\n" +
		"2,LOAN,-50000.00,0.12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "accounts.csv"), []byte(accounts), 0o644))
	return configPath, dataDir, logsDir
}

func TestRunDaily(t *testing.T) {
	configPath, dataDir, logsDir := workDir(t)

	recent := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	feed := "id,fecha,monto,tipo\n" +
		"1," + recent + ",5000.00,credito\n" +
		"9999," + recent + ",100.00,credito\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "transactions.csv"), []byte(feed), 0o644))

	_, err := runCLI(t, "run", "daily", "--config", configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dataDir, "processed_transactions.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cuenta inexistente")

	logData, err := os.ReadFile(filepath.Join(logsDir, "run-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "dailyTransactions")
	assert.Contains(t, string(logData), "COMPLETED")
}

func TestRunDaily_DateFlag(t *testing.T) {
	configPath, dataDir, _ := workDir(t)

	recent := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	feed := "id,fecha,monto,tipo\n1," + recent + ",25.00,deposito\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "transactions_2025-08-01.csv"), []byte(feed), 0o644))

	_, err := runCLI(t, "run", "daily", "--config", configPath, "--date", "2025-08-01")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dataDir, "processed_transactions.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "deposito")
}

func TestRunDaily_MissingFeed(t *testing.T) {
	configPath, _, _ := workDir(t)

	_, err := runCLI(t, "run", "daily", "--config", configPath)
	require.Error(t, err)
}

func TestRunMonthly(t *testing.T) {
	configPath, dataDir, _ := workDir(t)

	_, err := runCLI(t, "run", "monthly", "--config", configPath, "--period", "2025-08")
	require.NoError(t, err)

	ledger, err := os.ReadFile(filepath.Join(dataDir, "interest_ledger.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(ledger), "1,2025-08,375.00,150375.00")

	f, err := os.Open(filepath.Join(dataDir, "accounts.csv"))
	require.NoError(t, err)
	defer f.Close()
	accounts, err := store.ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "150375.00", accounts[0].Balance.StringFixed(2))
}

func TestRunMonthly_RequiresPeriod(t *testing.T) {
	configPath, _, _ := workDir(t)

	_, err := runCLI(t, "run", "monthly", "--config", configPath)
	require.Error(t, err)
}

func TestRunAnnual(t *testing.T) {
	configPath, dataDir, _ := workDir(t)

	_, err := runCLI(t, "run", "annual", "--config", configPath, "--year", "2025")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dataDir, "annual_statements.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,2025,0.00,0.00,150000.00")
}

func TestRunAnnual_RequiresYear(t *testing.T) {
	configPath, _, _ := workDir(t)

	_, err := runCLI(t, "run", "annual", "--config", configPath)
	require.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")

	for _, d := range []string{"data", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, "bankbatch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Jobs.Daily.ChunkSize)
	assert.Equal(t, 50, cfg.Jobs.Daily.SkipLimit)
	assert.Equal(t, 3, cfg.Jobs.Monthly.RetryLimit)
}
