package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultLedgerPath = "./board-sync.db"

type Config struct {
	Token       string
	BoardOwner  string
	BoardNumber int
	RepoOwner   string
	RepoName    string
	StatusField string
	TasksDir    string
	ArchiveDir  string
	LedgerPath  string
}

// Load reads the configuration from the environment, picking up a .env
// file when one is present. Missing required values fail here, before any
// remote call is made.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:       os.Getenv("GITHUB_TOKEN"),
		BoardOwner:  os.Getenv("BOARD_OWNER"),
		RepoOwner:   os.Getenv("REPO_OWNER"),
		RepoName:    os.Getenv("REPO_NAME"),
		StatusField: getEnvWithDefault("STATUS_FIELD", "Status"),
		TasksDir:    getEnvWithDefault("TASKS_DIR", "tasks"),
		ArchiveDir:  getEnvWithDefault("ARCHIVE_DIR", filepath.Join("tasks", "archive")),
		LedgerPath:  getEnvWithDefault("LEDGER_PATH", defaultLedgerPath),
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is not set")
	}
	if cfg.BoardOwner == "" {
		return nil, fmt.Errorf("BOARD_OWNER is not set")
	}

	rawNumber := os.Getenv("BOARD_NUMBER")
	if rawNumber == "" {
		return nil, fmt.Errorf("BOARD_NUMBER is not set")
	}
	number, err := strconv.Atoi(rawNumber)
	if err != nil || number <= 0 {
		return nil, fmt.Errorf("BOARD_NUMBER must be a positive integer, got %q", rawNumber)
	}
	cfg.BoardNumber = number

	// Issues usually live under the board's owner.
	if cfg.RepoOwner == "" {
		cfg.RepoOwner = cfg.BoardOwner
	}
	if cfg.RepoName == "" {
		return nil, fmt.Errorf("REPO_NAME is not set")
	}

	return cfg, nil
}

// LedgerPath resolves just the ledger location, for commands that only
// read past runs and need none of the remote credentials.
func LedgerPath() string {
	_ = godotenv.Load()
	return getEnvWithDefault("LEDGER_PATH", defaultLedgerPath)
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
