// Package paniclogger appends recovered panics to a panic.log file that is
// kept separate from the regular log, so a crash report survives whatever
// handler the console logs through.
package paniclogger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	panicLogFile = "panic.log"
	maxFileSize  = 10 * 1024 * 1024 // rotated to panic.log.old past 10MB
)

var (
	logFile  *os.File
	fileLock sync.Mutex
	logDir   string
	initOnce sync.Once
	initErr  error
)

// Init opens <dir>/panic.log, creating dir when needed. Only the first call
// has an effect until Reset.
func Init(dir string) error {
	initOnce.Do(func() {
		if dir == "" {
			initErr = fmt.Errorf("panic log directory is empty")
			return
		}
		logDir = dir

		if err := os.MkdirAll(logDir, 0o700); err != nil {
			initErr = fmt.Errorf("failed to create logs directory: %w", err)
			return
		}

		f, err := openLog()
		if err != nil {
			initErr = fmt.Errorf("failed to open panic log file: %w", err)
			return
		}
		logFile = f
	})
	return initErr
}

// Path returns the panic log location, or "" before a successful Init.
func Path() string {
	fileLock.Lock()
	defer fileLock.Unlock()
	if logFile == nil {
		return ""
	}
	return filepath.Join(logDir, panicLogFile)
}

// LogPanic appends one panic entry. Without Init it writes to stderr.
func LogPanic(context string, panicError any, stackTrace string) {
	fileLock.Lock()
	defer fileLock.Unlock()

	if logFile == nil {
		_, _ = fmt.Fprintf(os.Stderr, "[PANIC] %s: %v\n%s\n", context, panicError, stackTrace)
		return
	}

	if err := rotateIfNeeded(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to rotate panic log: %v\n", err)
	}

	entry := fmt.Sprintf(
		"\n================================================================================\n"+
			"PANIC DETECTED\n"+
			"================================================================================\n"+
			"Timestamp: %s\n"+
			"Context:   %s\n"+
			"Error:     %v\n"+
			"\nStack Trace:\n%s\n"+
			"================================================================================\n\n",
		time.Now().Format(time.RFC3339Nano), context, panicError, stackTrace,
	)

	if _, err := logFile.WriteString(entry); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to write panic log: %v\n", err)
	}
	_ = logFile.Sync()
}

func openLog() (*os.File, error) {
	return os.OpenFile(filepath.Join(logDir, panicLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func rotateIfNeeded() error {
	stat, err := logFile.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < maxFileSize {
		return nil
	}

	_ = logFile.Close()
	logFile = nil

	current := filepath.Join(logDir, panicLogFile)
	backup := current + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(current, backup); err != nil {
		return err
	}

	logFile, err = openLog()
	return err
}

// Close closes the panic log.
func Close() error {
	fileLock.Lock()
	defer fileLock.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Reset drops the logger state. FOR TESTING ONLY.
func Reset() {
	fileLock.Lock()
	defer fileLock.Unlock()

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = nil
	logDir = ""
	initOnce = sync.Once{}
	initErr = nil
}
