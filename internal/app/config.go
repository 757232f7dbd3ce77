package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	appDirName = "tally"
	dbFileName = "tally.db"

	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	DefaultUser = "local"
)

type Config struct {
	DBPath    string
	UserID    string
	Store     string
	DSN       string
	LogLevel  string
	LogFormat string
	TZ        string
	SentryDSN string

	EstimatorURL string
	EstimatorKey string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnv reads envFiles (".env" when none are given) into the process
// environment and returns the resulting config. Missing files are ignored.
func LoadEnv(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Config{
		DBPath:    getEnvOrDefault("TALLY_DB", ""),
		UserID:    getEnvOrDefault("TALLY_USER", DefaultUser),
		Store:     strings.ToLower(getEnvOrDefault("TALLY_STORE", StoreSQLite)),
		DSN:       getEnvOrDefault("TALLY_DSN", ""),
		LogLevel:  getEnvOrDefault("TALLY_LOG_LEVEL", "warn"),
		LogFormat: getEnvOrDefault("TALLY_LOG_FORMAT", "text"),
		TZ:        getEnvOrDefault("TALLY_TZ", ""),
		SentryDSN: getEnvOrDefault("SENTRY_DSN", ""),

		EstimatorURL: getEnvOrDefault("TALLY_ESTIMATOR_URL", ""),
		EstimatorKey: getEnvOrDefault("TALLY_ESTIMATOR_KEY", ""),
	}, nil
}

// Location resolves the calendar-day zone. Empty means the machine's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.TZ == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TZ, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DSN == "" {
			return fmt.Errorf("--dsn (or TALLY_DSN) is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q (use sqlite or postgres)", c.Store)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user id must not be empty")
	}
	return nil
}

// ResolveDBPath returns the configured SQLite path, or
// <user config dir>/tally/tally.db, and makes sure its directory exists.
func (c Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
		path = filepath.Join(base, appDirName, dbFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create db directory: %w", err)
	}
	return path, nil
}
