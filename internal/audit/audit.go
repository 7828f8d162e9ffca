// Package audit records step and plan execution outcomes as JSON lines.
// Every entry carries the owning plan's transaction id so all executions
// belonging to one plan can be correlated after the fact.
package audit

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a single audit record
type Entry struct {
	TransactionID string                 `json:"transaction_id"`
	PlanID        string                 `json:"plan_id"`
	StepID        string                 `json:"step_id,omitempty"`
	ToolID        string                 `json:"tool_id,omitempty"`
	Action        string                 `json:"action"` // e.g. "step_executed", "plan_executed"
	Status        string                 `json:"status"` // "success" or "failure"
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Logger appends audit entries to a writer, one JSON object per line
type Logger struct {
	mu     sync.Mutex
	logger zerolog.Logger
	file   *os.File
}

// New creates an audit logger appending to the given file path
func New(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Logger{
		logger: zerolog.New(file).With().Timestamp().Logger(),
		file:   file,
	}, nil
}

// NewWriter creates an audit logger appending to an arbitrary writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// Record emits one audit entry
func (l *Logger) Record(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	evt := l.logger.Log().
		Str("transaction_id", entry.TransactionID).
		Str("plan_id", entry.PlanID).
		Str("action", entry.Action).
		Str("status", entry.Status)

	if entry.StepID != "" {
		evt = evt.Str("step_id", entry.StepID)
	}
	if entry.ToolID != "" {
		evt = evt.Str("tool_id", entry.ToolID)
	}
	if entry.Metadata != nil {
		evt = evt.Interface("metadata", entry.Metadata)
	}

	evt.Msg("")
}

// Close closes the audit logger's file handle
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
