package formdraft

import "time"

// OperationEvent describes one Manager operation for logging.
type OperationEvent struct {
	Op       string
	Duration time.Duration
	Err      error
	Fields   map[string]any
}

// Logger records Manager operations.
type Logger interface {
	LogOperation(OperationEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(OperationEvent)

// LogOperation implements Logger.
func (f LoggerFunc) LogOperation(event OperationEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogOperation(OperationEvent) {}
