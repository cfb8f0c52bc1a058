package status

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kk-code-lab/vgrid/internal/textutil"
)

const (
	DefaultMessageCapacity = 100
	DefaultErrorCapacity   = 10
)

// Message is one status-line entry.
type Message struct {
	Time    time.Time
	Text    string
	IsError bool
}

// ErrorEntry is one retained error with its full detail.
type ErrorEntry struct {
	Time    time.Time
	Key     string
	Source  string
	Summary string
	Detail  string
}

// Log collects status messages and recent errors for display and later
// inspection. Every entry is mirrored to the structured logger.
type Log struct {
	messages *Ring[Message]
	errors   *Ring[ErrorEntry]
	logger   *slog.Logger
	now      func() time.Time
}

// NewLog creates a Log retaining errorCapacity recent errors.
func NewLog(logger *slog.Logger, errorCapacity int) *Log {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if errorCapacity <= 0 {
		errorCapacity = DefaultErrorCapacity
	}
	return &Log{
		messages: NewRing[Message](DefaultMessageCapacity),
		errors:   NewRing[ErrorEntry](errorCapacity),
		logger:   logger,
		now:      time.Now,
	}
}

// Status posts a status message.
func (l *Log) Status(text string) {
	text = textutil.SanitizeTerminalText(text)
	l.messages.Push(Message{Time: l.now(), Text: text})
	l.logger.Info("status", "message", text)
}

// Statusf posts a formatted status message.
func (l *Log) Statusf(format string, args ...any) {
	l.Status(fmt.Sprintf(format, args...))
}

// ReportError records an error. The status line gets the last line of
// summary; detail is kept in the error ring. Entries whose key is already
// present in the ring are dropped so repeated identical failures do not
// flood it. It reports whether the entry was retained.
func (l *Log) ReportError(source, key, summary, detail string) bool {
	entry := ErrorEntry{
		Time:    l.now(),
		Key:     key,
		Source:  source,
		Summary: summary,
		Detail:  detail,
	}
	added := l.errors.PushUnless(entry, func(e ErrorEntry) bool {
		return key != "" && e.Key == key
	})
	if !added {
		return false
	}
	line := textutil.SanitizeTerminalText(textutil.LastLine(summary))
	l.messages.Push(Message{Time: entry.Time, Text: line, IsError: true})
	l.logger.Warn("error", "source", source, "summary", summary)
	l.logger.Debug("error detail", "source", source, "detail", detail)
	return true
}

// Last returns the most recent status message.
func (l *Log) Last() (Message, bool) {
	return l.messages.Last()
}

// Messages returns retained status messages oldest first.
func (l *Log) Messages() []Message {
	return l.messages.Items()
}

// Errors returns retained errors oldest first.
func (l *Log) Errors() []ErrorEntry {
	return l.errors.Items()
}

// ErrorCount returns the number of retained errors.
func (l *Log) ErrorCount() int {
	return l.errors.Len()
}
