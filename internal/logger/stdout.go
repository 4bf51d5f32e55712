package logger

import (
	"context"
	"encoding/json"
	"log"

	"geospy/internal/models"
)

// StdoutLogger implements Service by writing entries to standard output.
// Used when no DATABASE_URL is configured so the service degrades instead
// of refusing to start.
type StdoutLogger struct{}

// NewStdoutLogger creates a logger that writes to stdout
func NewStdoutLogger() Service {
	return &StdoutLogger{}
}

// LogInfo logs an informational message
func (l *StdoutLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	l.write(ctx, "INFO", operation, "", message, nil, metadata)
}

// LogSuccess logs a successful operation
func (l *StdoutLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	l.write(ctx, "INFO", operation, targetName, message, nil, metadata)
}

// LogError logs an error with severity
func (l *StdoutLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	l.write(ctx, "ERROR("+string(severity)+")", operation, targetName, message, err, metadata)
}

func (l *StdoutLogger) write(ctx context.Context, level, operation, targetName, message string, err error, metadata map[string]interface{}) {
	logEvent := GetLogEvent(ctx)

	line := map[string]interface{}{
		"level":      level,
		"operation":  operation,
		"message":    message,
		"process_id": logEvent.ProcessID,
	}
	if targetName != "" {
		line["target"] = targetName
	}
	if err != nil {
		line["error"] = err.Error()
	}
	if len(metadata) > 0 {
		line["metadata"] = metadata
	}

	encoded, encErr := json.Marshal(line)
	if encErr != nil {
		log.Printf("[%s] %s %s: %s (metadata unserializable)", level, operation, targetName, message)
		return
	}
	log.Println(string(encoded))
}

// Close is a no-op for the stdout logger
func (l *StdoutLogger) Close() error {
	return nil
}
