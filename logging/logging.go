// Package logging provides leveled console output for the runtime.
// Lines have the form: LEVEL TIMESTAMP [component] message key=value ...
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a case-insensitive level name.
// Unknown names fall back to INFO with ok=false.
func ParseLevel(s string) (Level, bool) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if lvl == "WARNING" {
		lvl = LevelWarn
	}
	if _, ok := levelPriority[lvl]; !ok {
		return LevelInfo, false
	}
	return lvl, true
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	l := New()
	l.output = io.Discard
	l.minLevel = LevelError
	return l
}

// WithComponent returns a new logger with the given component name.
// Derived loggers share the parent's output and lock.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		traceID:   l.traceID,
	}
}

// WithTraceID returns a new logger with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   traceID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as sorted key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	merged := make(map[string]interface{})
	if len(fields) > 0 && fields[0] != nil {
		for k, v := range fields[0] {
			merged[k] = v
		}
	}
	if l.traceID != "" {
		merged["trace"] = l.traceID
	}
	fieldStr := formatFields(merged)

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.output.Write([]byte(line))
}

// --- Lifecycle logging methods ---
// Called by the orchestrator as the system moves through its phases.

// SystemStart logs the start of the lifecycle.
func (l *Logger) SystemStart(name string, nodes int) {
	l.Info("system_start", map[string]interface{}{
		"system": name,
		"nodes":  nodes,
	})
}

// SystemComplete logs the end of the lifecycle.
func (l *Logger) SystemComplete(name string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"system":   name,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("system_failed", fields)
		return
	}
	l.Info("system_complete", fields)
}

// NodeRegistered logs a node being added to the system.
func (l *Logger) NodeRegistered(node, id string) {
	l.Debug("node_registered", map[string]interface{}{
		"node": node,
		"id":   id,
	})
}

// PhaseStart logs the start of a lifecycle phase.
func (l *Logger) PhaseStart(phase string, nodes int) {
	l.Debug("phase_start", map[string]interface{}{
		"phase": phase,
		"nodes": nodes,
	})
}

// PhaseComplete logs how a lifecycle phase ended.
func (l *Logger) PhaseComplete(phase string, duration time.Duration, outcome string) {
	l.Info("phase_complete", map[string]interface{}{
		"phase":    phase,
		"duration": duration.String(),
		"outcome":  outcome,
	})
}

// HookFailed logs a node hook returning an error or panicking.
func (l *Logger) HookFailed(node, phase string, err error) {
	l.Error("hook_failed", map[string]interface{}{
		"node":  node,
		"phase": phase,
		"error": err.Error(),
	})
}

// ShutdownRequested logs a shutdown signal observed by the orchestrator.
func (l *Logger) ShutdownRequested(kind, phase string) {
	l.Warn("shutdown_requested", map[string]interface{}{
		"kind":  kind,
		"phase": phase,
	})
}
