package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// Environment variable names.
const (
	EnvAPIURL      = "MOBCASH_API_URL"
	EnvToken       = "MOBCASH_TOKEN"
	EnvUsersPath   = "MOBCASH_USERS_PATH"
	EnvPageSize    = "MOBCASH_PAGE_SIZE"
	EnvHTTPTimeout = "MOBCASH_HTTP_TIMEOUT"
	EnvHome        = "MOBCASH_HOME"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config holds everything the console reads from its environment.
type Config struct {
	// API root, e.g. https://api.example.com (required)
	APIURL string

	// Bearer token. When empty the stored credential is used.
	Token string

	// Path of the normal-users list endpoint
	UsersPath string

	// Page size used by list commands and the dashboard
	PageSize int

	// Whole-request timeout; zero means none
	HTTPTimeout time.Duration

	// Directory for the stored credential and logs (default ~/.mobcashctl)
	Home string

	LogLevel slog.Level
}

// Load reads the configuration from the environment, after loading the first
// .env file found among envPaths (defaults to ".env" and "<home>/.env").
// Variables already set in the process environment win over the file.
func Load(envPaths ...string) (*Config, error) {
	home, err := homeDir()
	if err != nil {
		return nil, err
	}

	if len(envPaths) == 0 {
		envPaths = []string{
			".env",                      // current directory
			filepath.Join(home, ".env"), // console home
		}
	}

	loaded := false
	for _, envPath := range envPaths {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded .env file successfully", "path", envPath)
			loaded = true
			break
		}
	}
	if !loaded {
		slog.Debug("No .env file found in any expected location, using system environment variables")
	}

	// the .env file may set the home directory too
	if home, err = homeDir(); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:    strings.TrimSpace(os.Getenv(EnvAPIURL)),
		Token:     strings.TrimSpace(os.Getenv(EnvToken)),
		UsersPath: strings.TrimSpace(os.Getenv(EnvUsersPath)),
		PageSize:  models.DefaultPageSize,
		Home:      home,
		LogLevel:  slog.LevelInfo,
	}

	if cfg.UsersPath == "" {
		cfg.UsersPath = resources.DefaultUsersPath
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Warn("Invalid value for "+EnvPageSize+", using default", "value", v, "default", models.DefaultPageSize)
		} else {
			cfg.PageSize = n
		}
	}

	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			slog.Warn("Invalid value for "+EnvHTTPTimeout+", defaulting to no timeout", "value", v)
		} else {
			cfg.HTTPTimeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			slog.Warn("Invalid value for "+EnvLogLevel+", defaulting to info", "value", v)
		} else {
			cfg.LogLevel = level
		}
	}

	return cfg, nil
}

// Validate checks the settings every API command needs.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("missing required environment variable: %s", EnvAPIURL)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("%s must start with http:// or https://, got %q", EnvAPIURL, c.APIURL)
	}
	return nil
}

// LogDir is where the dashboard writes its log file.
func (c *Config) LogDir() string {
	return filepath.Join(c.Home, "logs")
}

// ParseLevel accepts debug, info, warn and error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func homeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv(EnvHome)); h != "" {
		return h, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".mobcashctl"), nil
}
