package flasher

// DefaultChunkSize is the default data size per Write Flash command.
// 4 KiB keeps each serial exchange short enough for the boot ROM's
// command timeout at common baud rates.
const DefaultChunkSize = 4096

// MaxChunkSize is the largest accepted chunk size. The boot ROM buffers a
// whole write command before programming, so chunks are capped at 8 KiB.
const MaxChunkSize = 8192

// Config holds the flasher configuration.
type Config struct {
	// ProgressCallback is called during flashing to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ChunkSize is the maximum data size per Write Flash command
	ChunkSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
	}
}

// Option is a functional option for configuring the Flasher.
type Option func(*Config)

// WithProgressCallback sets a callback function to track flashing progress.
//
// Example:
//
//	fl := flasher.New(port,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for flasher operations.
//
// Example:
//
//	fl := flasher.New(port, flasher.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithChunkSize sets the maximum data size per Write Flash command.
// Values outside (0, MaxChunkSize] are ignored.
//
// Example:
//
//	fl := flasher.New(port, flasher.WithChunkSize(2048))
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= MaxChunkSize {
			c.ChunkSize = size
		}
	}
}
