package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears the variables for the test and restores them afterwards.
func unset(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func allVars() []string {
	return []string{EnvAPIURL, EnvToken, EnvUsersPath, EnvPageSize, EnvHTTPTimeout, EnvHome, EnvLogLevel}
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, allVars()...)
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.APIURL)
	assert.Equal(t, "/mobcash/users", cfg.UsersPath)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, filepath.Join(home, "logs"), cfg.LogDir())
	assert.Error(t, cfg.Validate())
}

func TestLoad_FromEnvFile(t *testing.T) {
	unset(t, allVars()...)
	t.Setenv(EnvHome, t.TempDir())

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "MOBCASH_API_URL=https://api.example.com\n" +
		"MOBCASH_TOKEN=abc\n" +
		"MOBCASH_PAGE_SIZE=25\n" +
		"MOBCASH_HTTP_TIMEOUT=15\n" +
		"MOBCASH_USERS_PATH=/mobcash/normal-users\n" +
		"LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/mobcash/normal-users", cfg.UsersPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	unset(t, allVars()...)
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvAPIURL, "https://from-process")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MOBCASH_API_URL=https://from-file\n"), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "https://from-process", cfg.APIURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	unset(t, allVars()...)
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvPageSize, "-3")
	t.Setenv(EnvHTTPTimeout, "soon")
	t.Setenv(EnvLogLevel, "loud")

	cfg, err := Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestValidate_Scheme(t *testing.T) {
	cfg := &Config{APIURL: "api.example.com"}
	assert.ErrorContains(t, cfg.Validate(), "http")
}
