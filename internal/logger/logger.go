package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	defaultLogger *Logger
)

// Logger holds one std logger per level; disabled levels write to io.Discard.
type Logger struct {
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// LogLevel is the log severity type
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// GetLogLevelFromString converts a level name to a LogLevel
func GetLogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

/**
 * Initialize the logging system
 * @param {string} path - Log file path, "console" or empty for stdout
 * @param {string} level - Minimum level emitted (debug/info/warn/error)
 * @description
 * - Creates the log directory when a file path is given
 * - Falls back to stdout if the log file cannot be opened
 * - Levels below the configured minimum are discarded
 */
func InitLogger(path string, level string) {
	var output io.Writer

	if path == "console" || path == "" {
		output = os.Stdout
	} else {
		output = setupLogFileOutput(path)
	}

	logLevel := GetLogLevelFromString(level)

	flags := log.LstdFlags

	defaultLogger = &Logger{
		debugLogger: log.New(io.Discard, "DEBUG: ", flags),
		infoLogger:  log.New(io.Discard, "INFO: ", flags),
		warnLogger:  log.New(io.Discard, "WARN: ", flags),
		errorLogger: log.New(io.Discard, "ERROR: ", flags),
	}

	if logLevel <= DEBUG {
		defaultLogger.debugLogger.SetOutput(output)
	}
	if logLevel <= INFO {
		defaultLogger.infoLogger.SetOutput(output)
	}
	if logLevel <= WARN {
		defaultLogger.warnLogger.SetOutput(output)
	}
	if logLevel <= ERROR {
		defaultLogger.errorLogger.SetOutput(output)
	}
}

// setupLogFileOutput opens the log file, creating its directory first
func setupLogFileOutput(logPath string) io.Writer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create log directory failed: %v\n", err)
		return os.Stdout
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file failed: %v\n", err)
		return os.Stdout
	}

	return file
}

// Debug logs a debug message
func Debug(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.debugLogger.Println(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.debugLogger.Printf(format, v...)
	}
}

// Info logs an info message
func Info(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.infoLogger.Println(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.infoLogger.Printf(format, v...)
	}
}

// Warn logs a warning message
func Warn(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.warnLogger.Println(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.warnLogger.Printf(format, v...)
	}
}

// Error logs an error message
func Error(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Println(v...)
	}
}

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Printf(format, v...)
	}
}

// Fatal logs an error message and exits with a non-zero status
func Fatal(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Fatal(v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", v...)
		os.Exit(1)
	}
}

// Fatalf logs a formatted error message and exits with a non-zero status
func Fatalf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.errorLogger.Fatalf(format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
		os.Exit(1)
	}
}
