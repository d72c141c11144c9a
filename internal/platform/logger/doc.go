// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, carries request-scoped loggers in contexts, and
// stamps records with the active OpenTelemetry trace and span IDs.
package logger
