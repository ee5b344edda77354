package helpers

import "sync"

// LogRecord is one entry captured by RecordingLogger
type LogRecord struct {
	Level    string
	Message  string
	Metadata map[string]interface{}
}

// RecordingLogger captures log entries so tests can assert on them
type RecordingLogger struct {
	mu      sync.Mutex
	Entries []LogRecord
}

// NewRecordingLogger creates an empty recording logger
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogRecord{Level: level, Message: message, Metadata: metadata})
}

// Count returns the number of entries logged at level
func (l *RecordingLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
