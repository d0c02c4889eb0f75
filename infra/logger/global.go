package logger

import (
	"sync"

	"paygate/infra/config"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
)

// InitGlobalLogger initializes the global system logger
func InitGlobalLogger() {
	once.Do(func() {
		globalLogger = NewSystemLogger(SystemLoggerConfig{
			MinLevel: LogLevel(config.GetEnv("LOGGING_LEVEL", string(LevelInfo))),
			Service:  "paygate",
		})
	})
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	if globalLogger == nil {
		InitGlobalLogger()
	}
	return globalLogger
}

// Debug logs a debug message through the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message through the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message through the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message through the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}
