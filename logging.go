package relstore

import "log/slog"

// logger is the package-wide structured logger for buffer pool lock
// waits, page loads, eviction, deadlock-arbitration and flush-failure events. Defaults to
// slog.Default(); a host embedding relstore can redirect it with
// SetLogger.
var logger = slog.Default()

// SetLogger replaces the package logger, e.g. to attach a JSON handler
// writing to the host's log sink.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
