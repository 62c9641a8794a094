package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level bankbatch.yaml configuration.
type Config struct {
	DataDir string       `yaml:"data_dir"`
	LogsDir string       `yaml:"logs_dir"`
	Legacy  LegacyConfig `yaml:"legacy"`
	Jobs    JobsConfig   `yaml:"jobs"`
}

// LegacyConfig describes the legacy CSV feed: real file names and the real
// column names used by the bank's legacy export. Column order is fixed
// (id, fecha, monto, tipo); only the names vary between environments.
type LegacyConfig struct {
	Files     FilesConfig   `yaml:"files"`
	Columns   ColumnsConfig `yaml:"columns"`
	Delimiter string        `yaml:"delimiter"`
}

// FilesConfig holds the default feed file names.
type FilesConfig struct {
	DailyTransactionsFile string `yaml:"daily_transactions_file"`
}

// ColumnsConfig holds the legacy feed's header names. Mapping is
// positional; the names document what each environment's export calls
// the four columns.
type ColumnsConfig struct {
	ID    string `yaml:"id"`
	Fecha string `yaml:"fecha"`
	Monto string `yaml:"monto"`
	Tipo  string `yaml:"tipo"`
}

// JobsConfig holds per-job chunk and fault-tolerance settings.
type JobsConfig struct {
	Daily   DailyJobConfig   `yaml:"daily"`
	Monthly MonthlyJobConfig `yaml:"monthly"`
	Annual  AnnualJobConfig  `yaml:"annual"`
}

// DailyJobConfig configures the daily transactions job.
type DailyJobConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	SkipLimit int `yaml:"skip_limit"`
}

// MonthlyJobConfig configures the monthly interest job.
type MonthlyJobConfig struct {
	ChunkSize  int `yaml:"chunk_size"`
	RetryLimit int `yaml:"retry_limit"`
}

// AnnualJobConfig configures the annual statement job.
type AnnualJobConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// Load reads a bankbatch.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no bankbatch.yaml is present.
// Chunk sizes and limits match the bank's production job definitions.
func Default() *Config {
	return &Config{
		DataDir: "data",
		LogsDir: "logs",
		Legacy: LegacyConfig{
			Files: FilesConfig{
				DailyTransactionsFile: "transactions.csv",
			},
			Columns: ColumnsConfig{
				ID:    "id",
				Fecha: "fecha",
				Monto: "monto",
				Tipo:  "tipo",
			},
			Delimiter: ",",
		},
		Jobs: JobsConfig{
			Daily:   DailyJobConfig{ChunkSize: 100, SkipLimit: 50},
			Monthly: MonthlyJobConfig{ChunkSize: 50, RetryLimit: 3},
			Annual:  AnnualJobConfig{ChunkSize: 50},
		},
	}
}

// applyDefaults fills zero-valued fields so a sparse YAML file still yields
// a runnable configuration.
func (c *Config) applyDefaults() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.LogsDir == "" {
		c.LogsDir = def.LogsDir
	}
	if c.Legacy.Files.DailyTransactionsFile == "" {
		c.Legacy.Files.DailyTransactionsFile = def.Legacy.Files.DailyTransactionsFile
	}
	if c.Legacy.Columns.ID == "" {
		c.Legacy.Columns = def.Legacy.Columns
	}
	if c.Legacy.Delimiter == "" {
		c.Legacy.Delimiter = def.Legacy.Delimiter
	}
	if c.Jobs.Daily.ChunkSize == 0 {
		c.Jobs.Daily.ChunkSize = def.Jobs.Daily.ChunkSize
	}
	if c.Jobs.Daily.SkipLimit == 0 {
		c.Jobs.Daily.SkipLimit = def.Jobs.Daily.SkipLimit
	}
	if c.Jobs.Monthly.ChunkSize == 0 {
		c.Jobs.Monthly.ChunkSize = def.Jobs.Monthly.ChunkSize
	}
	if c.Jobs.Monthly.RetryLimit == 0 {
		c.Jobs.Monthly.RetryLimit = def.Jobs.Monthly.RetryLimit
	}
	if c.Jobs.Annual.ChunkSize == 0 {
		c.Jobs.Annual.ChunkSize = def.Jobs.Annual.ChunkSize
	}
}

// DailyFeedFile returns the feed file name for a run date, falling back to
// the configured default when the date is blank.
func (c *Config) DailyFeedFile(runDate string) string {
	if runDate == "" {
		return c.Legacy.Files.DailyTransactionsFile
	}
	return "transactions_" + runDate + ".csv"
}
