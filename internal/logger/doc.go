// Package logger wraps a process-wide zap sugared logger.
//
// The logger travels inside a context.Context: services call WithName or
// WithKV to scope it and use the leveled helpers (Infof, InfoKV, WarnKV, ...)
// which pull it back out with FromContext.
package logger
