// Package logging provides config-driven categorized logging for ecocap.
// Every subsystem logs through a category so a run can be narrowed to, say,
// the numbering engine without drowning in workbook I/O noise.
// Output goes to stderr (console encoding) and optionally to a JSON log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryWorkbook  Category = "workbook"  // xlsx open/read/write/save
	CategoryNumbering Category = "numbering" // Enumerator, formatter, flattener
	CategorySort      Category = "sort"      // Company block sorting
	CategoryReconcile Category = "reconcile" // Category name reconciliation
	CategoryCollector Category = "collector" // Portal scraping into the workbook
	CategoryBrowser   Category = "browser"   // Browser automation
	CategoryExport    Category = "export"    // SQLite edge export
)

// AllCategories lists every known category in declaration order.
var AllCategories = []Category{
	CategoryBoot,
	CategoryWorkbook,
	CategoryNumbering,
	CategorySort,
	CategoryReconcile,
	CategoryCollector,
	CategoryBrowser,
	CategoryExport,
}

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Verbose    bool            // forces debug
	File       string          // optional JSON log file
	Categories map[string]bool // per-category toggles, missing = enabled
}

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	root       = zap.NewNop()
	loggers    = make(map[Category]*Logger)
	loggersMu  sync.RWMutex
	categories map[string]bool
	logFile    *os.File
)

// Initialize builds the root zap logger from opts and resets category loggers.
// It returns the root logger so commands can log with typed fields directly.
func Initialize(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	install(logger, opts.Categories, file)
	return logger, nil
}

// Use installs an externally built logger (tests pass an observer core here).
func Use(logger *zap.Logger, cats map[string]bool) {
	install(logger, cats, nil)
}

func install(logger *zap.Logger, cats map[string]bool, file *os.File) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	root = logger
	categories = cats
	logFile = file
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	loggersMu.RLock()
	defer loggersMu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	base := root
	if !categoryEnabledLocked(category) {
		base = zap.NewNop()
	}
	l := &Logger{
		category: category,
		sugar:    base.With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes a message with key-value fields at the given level.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch level {
	case "debug":
		l.sugar.Debugw(msg, kv...)
	case "warn":
		l.sugar.Warnw(msg, kv...)
	case "error":
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// Sync flushes buffered entries and closes the log file, if any.
func Sync() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	_ = root.Sync()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// Workbook logs to the workbook category
func Workbook(format string, args ...interface{}) { Get(CategoryWorkbook).Info(format, args...) }

// WorkbookDebug logs debug to the workbook category
func WorkbookDebug(format string, args ...interface{}) {
	Get(CategoryWorkbook).Debug(format, args...)
}

// WorkbookWarn logs a warning to the workbook category
func WorkbookWarn(format string, args ...interface{}) {
	Get(CategoryWorkbook).Warn(format, args...)
}

// Sort logs to the sort category
func Sort(format string, args ...interface{}) { Get(CategorySort).Info(format, args...) }

// SortWarn logs a warning to the sort category
func SortWarn(format string, args ...interface{}) { Get(CategorySort).Warn(format, args...) }

// Reconcile logs to the reconcile category
func Reconcile(format string, args ...interface{}) { Get(CategoryReconcile).Info(format, args...) }

// ReconcileWarn logs a warning to the reconcile category
func ReconcileWarn(format string, args ...interface{}) {
	Get(CategoryReconcile).Warn(format, args...)
}

// Collector logs to the collector category
func Collector(format string, args ...interface{}) { Get(CategoryCollector).Info(format, args...) }

// CollectorDebug logs debug to the collector category
func CollectorDebug(format string, args ...interface{}) {
	Get(CategoryCollector).Debug(format, args...)
}

// CollectorWarn logs a warning to the collector category
func CollectorWarn(format string, args ...interface{}) {
	Get(CategoryCollector).Warn(format, args...)
}

// Browser logs to the browser category
func Browser(format string, args ...interface{}) { Get(CategoryBrowser).Info(format, args...) }

// BrowserDebug logs debug to the browser category
func BrowserDebug(format string, args ...interface{}) {
	Get(CategoryBrowser).Debug(format, args...)
}

// BrowserWarn logs a warning to the browser category
func BrowserWarn(format string, args ...interface{}) { Get(CategoryBrowser).Warn(format, args...) }

// Export logs to the export category
func Export(format string, args ...interface{}) { Get(CategoryExport).Info(format, args...) }

// ExportDebug logs debug to the export category
func ExportDebug(format string, args ...interface{}) { Get(CategoryExport).Debug(format, args...) }

// =============================================================================
// REQUEST-SCOPED LOGGING
// =============================================================================

// RequestLogger tags every entry with a run ID and accumulated fields.
type RequestLogger struct {
	category  Category
	requestID string
	fields    map[string]interface{}
}

// WithRequestID returns a logger that tags entries with the given run ID.
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{
		category:  category,
		requestID: requestID,
		fields:    make(map[string]interface{}),
	}
}

// WithField returns a copy of r carrying one more field.
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	fields := make(map[string]interface{}, len(r.fields)+1)
	for k, v := range r.fields {
		fields[k] = v
	}
	fields[key] = value
	return &RequestLogger{category: r.category, requestID: r.requestID, fields: fields}
}

// RequestID returns the run ID.
func (r *RequestLogger) RequestID() string {
	return r.requestID
}

func (r *RequestLogger) log(level, format string, args ...interface{}) {
	fields := make(map[string]interface{}, len(r.fields)+1)
	for k, v := range r.fields {
		fields[k] = v
	}
	fields["req"] = r.requestID
	Get(r.category).StructuredLog(level, fmt.Sprintf(format, args...), fields)
}

func (r *RequestLogger) Debug(format string, args ...interface{}) { r.log("debug", format, args...) }
func (r *RequestLogger) Info(format string, args ...interface{})  { r.log("info", format, args...) }
func (r *RequestLogger) Warn(format string, args ...interface{})  { r.log("warn", format, args...) }
func (r *RequestLogger) Error(format string, args ...interface{}) { r.log("error", format, args...) }

// =============================================================================
// TIMING
// =============================================================================

// Timer measures one operation and logs its duration to a category.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer starts timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	return elapsed
}

// StopWithInfo logs the elapsed time at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.operation, elapsed)
	return elapsed
}

// StopWithThreshold warns when the operation exceeded threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold %v)", t.operation, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.operation, elapsed)
	}
	return elapsed
}
