package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mobcash/backoffice/app/mobcashctl/cmd/utils/credstore"
	"github.com/mobcash/backoffice/app/panichandler"
	"github.com/mobcash/backoffice/app/paniclogger"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
)

const dashboardLogFile = "mobcashctl.log"

// setupLogging sends logs to stderr at level.
func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// setupFileLogging sends logs to the console log file so the dashboard's
// alternate screen stays clean. The returned closer flushes the file.
func setupFileLogging() (io.Closer, error) {
	if err := os.MkdirAll(cfg.LogDir(), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.LogDir(), dashboardLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel})))
	return f, nil
}

// openConsole wires the SDK for one command run. The panic log is opened on
// the way; failing to open it only costs the crash report.
func openConsole() (*mobcashgo.Console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := paniclogger.Init(cfg.LogDir()); err != nil {
		slog.Warn("panic log unavailable", "error", err)
	}

	return mobcashgo.New(mobcashgo.Options{
		Config:    cfg,
		Tokens:    client.TokenFunc(resolveToken),
		UserAgent: "mobcashctl/" + Version,
		PanicHook: panichandler.Report,
		Go:        panichandler.SafeGo,
	})
}

// resolveToken prefers MOBCASH_TOKEN and falls back to the stored credential.
func resolveToken(context.Context) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	cred, err := credstore.Load(cfg.Home)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to read stored credential: %w", err)
	}
	return cred.Token, nil
}

// reportOutcome prints the notification the last write raised. On failure the
// operator-facing message is put in front of the technical error.
func reportOutcome(n notify.Notifier, err error) error {
	recent := n.Recent(1)
	var last *notify.Notification
	if len(recent) == 1 {
		last = &recent[0]
	}

	if err != nil {
		if last != nil && last.IsError() && last.Message != err.Error() {
			return fmt.Errorf("%s (%w)", last.Message, err)
		}
		return err
	}
	if last != nil && !last.IsError() {
		fmt.Println("✅", last.Message)
	}
	return nil
}
