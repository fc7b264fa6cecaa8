package gpubridge

import (
	"log/slog"

	"github.com/gogpu/gpubridge/internal/logx"
)

// SetLogger configures the logger for gpubridge and all its sub-packages.
// By default, gpubridge produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by gpubridge:
//   - [slog.LevelDebug]: resource creation and release
//   - [slog.LevelInfo]: lifecycle events (backend selected, device opened)
//   - [slog.LevelWarn]: non-fatal issues (tag fallbacks, deferred buffer frees)
//
// Example:
//
//	// Enable debug-level logging to stderr:
//	gpubridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger used by gpubridge.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logx.Logger()
}
