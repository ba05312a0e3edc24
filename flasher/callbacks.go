package flasher

import "time"

// Flashing phases reported through Progress.
const (
	// PhaseQuerying means the boot ROM is being queried for boot info
	PhaseQuerying = "querying"

	// PhaseErasing means the target flash range is being erased
	PhaseErasing = "erasing"

	// PhaseWriting means image chunks are being written
	PhaseWriting = "writing"

	// PhaseComplete means the operation finished successfully
	PhaseComplete = "complete"
)

// Progress contains information about the flashing progress.
// Passed to ProgressCallback during Flash operations.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// BytesWritten is the number of image bytes written so far
	BytesWritten int

	// TotalBytes is the total image size
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during flashing to report
// progress. Implementations should return quickly to avoid stalling the
// serial exchange.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// flasher. This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
