// Package log wires the process-wide slog default to a charmbracelet
// handler configured from the environment.
//
// MEMH_LOG_LEVEL: debug, info, warn, error (default: info)
// MEMH_LOG_PREFIX: prefix for log messages (default: "memh ")
// MEMH_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
)

// Setup installs the default logger. The debug flag forces debug level
// regardless of MEMH_LOG_LEVEL.
func Setup(debugMode bool) {
	initOnce.Do(func() {
		lg := log.NewWithOptions(output(), log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		})
		lg.SetLevel(level(debugMode))

		prefix := os.Getenv("MEMH_LOG_PREFIX")
		if prefix == "" {
			prefix = "memh "
		}

		slog.SetDefault(slog.New(lg.WithPrefix(prefix)))
		initialized.Store(true)
	})
}

func level(debugMode bool) log.Level {
	if debugMode {
		return log.DebugLevel
	}
	switch os.Getenv("MEMH_LOG_LEVEL") {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

func output() io.Writer {
	if os.Getenv("MEMH_LOG_TO_FILE") != "1" {
		return os.Stderr
	}
	timestamp := time.Now().Format("20060102-150405")
	f, err := os.OpenFile(fmt.Sprintf("memh-%s-debug.log", timestamp), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// fall back to stderr rather than losing logs
		return os.Stderr
	}
	return f
}

func Initialized() bool {
	return initialized.Load()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
