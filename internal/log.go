package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	globalLogger *SecureLogger
	loggerMutex  sync.RWMutex
)

// InitLogger initializes the global logger from a DownloadConfig. It always
// logs to a file: LogFileName if set, otherwise the default
// download_log_<timestamp>.txt; a relative name is placed under
// config.DownloadDir, an absolute one is used as is.
func InitLogger(config *DownloadConfig) error {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	level := parseLogLevel(config.LogLevel)

	name := config.LogFileName
	if name == "" {
		name = defaultLogFileName()
	}
	logPath := name
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(config.DownloadDir, name)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return NewValidationError("download_dir", "failed to create download directory for log file").
			WithSuggestion("check directory permissions and path validity")
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return NewValidationError("log_file_name", "failed to open log file").
			WithSuggestion("check file permissions and path validity")
	}
	var output io.Writer = file

	globalLogger = NewSecureLogger(output, level, config.EnableDebug, config.QuietMode)
	return nil
}

// defaultLogFileName builds the spec-documented default log file name,
// e.g. download_log_20260730T120000Z.txt.
func defaultLogFileName() string {
	return fmt.Sprintf("download_log_%s.txt", time.Now().UTC().Format("20060102T150405Z"))
}

// GetLogger returns the global logger, lazily creating a stderr-backed
// default if InitLogger was never called.
func GetLogger() *SecureLogger {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()

	if globalLogger == nil {
		globalLogger = NewDefaultLogger(false, false)
	}
	return globalLogger
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func LogError(format string, args ...interface{}) { GetLogger().Error(format, args...) }
func LogWarn(format string, args ...interface{})  { GetLogger().Warn(format, args...) }
func LogInfo(format string, args ...interface{})  { GetLogger().Info(format, args...) }
func LogDebug(format string, args ...interface{}) { GetLogger().Debug(format, args...) }

// LogTransferError logs a TransferError at a level derived from its severity.
func LogTransferError(err *TransferError) {
	logger := GetLogger()
	switch err.Severity {
	case SeverityCritical:
		logger.Error("critical: %s", err.DetailedError())
	case SeverityError:
		logger.Error("%s", err.DetailedError())
	case SeverityWarning:
		logger.Warn("%s", err.DetailedError())
	case SeverityInfo:
		logger.Info("%s", err.DetailedError())
	default:
		logger.Error("%s", err.DetailedError())
	}
}

// LogValidationError logs a ValidationError.
func LogValidationError(err *ValidationError) {
	GetLogger().Error("validation error: %s", err.Error())
}

func SetLogLevel(level LogLevel) { GetLogger().SetLevel(level) }
func SetDebugMode(debug bool)    { GetLogger().SetDebug(debug) }
func SetQuietMode(quiet bool)    { GetLogger().SetQuiet(quiet) }
