// Package logging provides leveled logging and run tracing for samplespace.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RunLog for structured JSONL estimation traces (.samplespace/runs.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/samplespace/internal/estimate"
)

// LevelTrace is a custom slog level below Debug for full content logging.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RunEntry is one line of the run log.
type RunEntry struct {
	Time     time.Time `json:"time"`
	Scenario string    `json:"scenario"`
	estimate.Report
}

// RunLog appends one JSONL line per completed estimate. It is safe for
// concurrent use. A nil RunLog is safe to use; all methods are no-ops on
// nil receiver.
type RunLog struct {
	mu   sync.Mutex
	file *os.File
}

// RunLogFile is the file name of the run log inside its directory.
const RunLogFile = "runs.jsonl"

// NewRunLog creates a run log writing to dir/runs.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewRunLog(dir string, level string) *RunLog {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, RunLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &RunLog{file: f}
}

// Log writes r as a single JSONL line stamped with the current time.
// Safe to call on nil receiver.
func (rl *RunLog) Log(scenario string, r estimate.Report) {
	if rl == nil {
		return
	}

	r.Value = estimate.JSONValue(r.Value)
	data, err := json.Marshal(RunEntry{
		Time:     time.Now().UTC(),
		Scenario: scenario,
		Report:   r,
	})
	if err != nil {
		return
	}
	data = append(data, '\n')

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return
	}
	_, _ = rl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rl *RunLog) Close() {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file != nil {
		rl.file.Close()
		rl.file = nil
	}
}
