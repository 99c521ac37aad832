package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageNone   = "none"
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Project   ProjectConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	SQLite    SQLiteConfig
	Snapshots SnapshotConfig
	PriceBase PriceBaseConfig
	Format    FormatConfig
	Overheads OverheadsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string
}

// ProjectConfig says where the project is loaded from at startup.
type ProjectConfig struct {
	// File is a .json or .yaml document. Empty means no local file.
	File string
	// Code identifies the project when restoring from a snapshot or
	// importing from the price base.
	Code string
	// StrictReferences rejects compound prices with unknown components.
	StrictReferences bool
}

// StorageConfig selects the snapshot repository.
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SQLiteConfig holds settings for the local SQLite store.
type SQLiteConfig struct {
	Path string
}

// SnapshotConfig holds scheduler-related settings.
type SnapshotConfig struct {
	// CronSchedule is a five-field cron expression. Empty disables the job.
	CronSchedule string
}

// PriceBaseConfig points at a remote service publishing project documents.
type PriceBaseConfig struct {
	BaseURL string
	Token   string
	// Path of the document to import at startup, relative to BaseURL.
	Path string
}

// FormatConfig controls how amounts are rendered in reports.
type FormatConfig struct {
	CurrencySymbol   string
	DecimalSeparator string
	GroupSeparator   string
	SymbolBefore     bool
}

// OverheadsConfig holds the ratios applied to the execution budget.
type OverheadsConfig struct {
	GeneralExpenses  decimal.Decimal
	IndustrialProfit decimal.Decimal
	VAT              decimal.Decimal
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	strict, err := getenvBool("STRICT_REFERENCES", false)
	if err != nil {
		return nil, err
	}
	symbolBefore, err := getenvBool("CURRENCY_SYMBOL_BEFORE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Project: ProjectConfig{
			File:             os.Getenv("PROJECT_FILE"),
			Code:             os.Getenv("PROJECT_CODE"),
			StrictReferences: strict,
		},
		Storage: StorageConfig{
			Driver: getenvWithDefault("STORAGE_DRIVER", StorageNone),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "boq"),
		},
		SQLite: SQLiteConfig{
			Path: getenvWithDefault("SQLITE_PATH", "boq.db"),
		},
		Snapshots: SnapshotConfig{
			CronSchedule: os.Getenv("SNAPSHOT_CRON_SCHEDULE"),
		},
		PriceBase: PriceBaseConfig{
			BaseURL: os.Getenv("PRICEBASE_URL"),
			Token:   os.Getenv("PRICEBASE_TOKEN"),
			Path:    os.Getenv("PRICEBASE_PATH"),
		},
		Format: FormatConfig{
			CurrencySymbol:   getenvWithDefault("CURRENCY_SYMBOL", "€"),
			DecimalSeparator: getenvWithDefault("DECIMAL_SEPARATOR", ","),
			GroupSeparator:   getenvWithDefault("GROUP_SEPARATOR", "."),
			SymbolBefore:     symbolBefore,
		},
	}

	if cfg.Overheads.GeneralExpenses, err = getenvDecimal("GENERAL_EXPENSES", "0.17"); err != nil {
		return nil, err
	}
	if cfg.Overheads.IndustrialProfit, err = getenvDecimal("INDUSTRIAL_PROFIT", "0.06"); err != nil {
		return nil, err
	}
	if cfg.Overheads.VAT, err = getenvDecimal("VAT", "0.21"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case StorageNone:
	case StorageMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORAGE_DRIVER=mongo")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided when STORAGE_DRIVER=mongo")
		}
	case StorageSQLite:
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH must be provided when STORAGE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of none, mongo, sqlite (got %q)", c.Storage.Driver)
	}

	if c.Snapshots.CronSchedule != "" && c.Storage.Driver == StorageNone {
		return errors.New("SNAPSHOT_CRON_SCHEDULE requires a STORAGE_DRIVER")
	}

	if c.PriceBase.Path != "" && c.PriceBase.BaseURL == "" {
		return errors.New("PRICEBASE_URL must be provided with PRICEBASE_PATH")
	}

	if c.Format.DecimalSeparator == c.Format.GroupSeparator {
		return errors.New("DECIMAL_SEPARATOR and GROUP_SEPARATOR must differ")
	}

	for name, ratio := range map[string]decimal.Decimal{
		"GENERAL_EXPENSES":  c.Overheads.GeneralExpenses,
		"INDUSTRIAL_PROFIT": c.Overheads.IndustrialProfit,
		"VAT":               c.Overheads.VAT,
	} {
		if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be a ratio between 0 and 1", name)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func getenvDecimal(key, fallback string) (decimal.Decimal, error) {
	value := getenvWithDefault(key, fallback)
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	return parsed, nil
}
