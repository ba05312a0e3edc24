package flasher

import (
	"context"
	"fmt"
	"time"

	"github.com/fwtools/go-blboot/isp"
)

// Transport carries one ISP exchange to the device and back: it frames and
// sends a command ID plus request payload, and returns the raw response
// payload. Link-level concerns (port handling, timing, retries) live behind
// this interface; the flasher never opens a port itself.
type Transport interface {
	Exchange(ctx context.Context, commandID byte, request []byte) ([]byte, error)
}

// Flasher orchestrates a flashing session against a detected device: boot
// info query, flash erase and chunked flash writes, with progress tracking.
//
// The transport is exclusively owned by the Flasher for the duration of a
// session; there is no internal locking.
type Flasher struct {
	transport Transport
	config    Config
}

// New creates a Flasher over the given transport.
//
// Example:
//
//	port, _ := serialport.Open("/dev/ttyUSB0", 115200)
//	fl := flasher.New(port,
//	    flasher.WithChunkSize(4096),
//	    flasher.WithProgressCallback(progressFunc),
//	)
func New(t Transport, opts ...Option) *Flasher {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Flasher{
		transport: t,
		config:    cfg,
	}
}

// BootInfo queries the boot ROM for version and flash configuration.
func (f *Flasher) BootInfo(ctx context.Context) (*isp.BootInfo, error) {
	cmd := isp.GetBootInfo{}
	resp, err := f.transport.Exchange(ctx, cmd.CommandID(), cmd.Payload())
	if err != nil {
		return nil, fmt.Errorf("get boot info: %w", err)
	}

	return cmd.ParseResponse(resp)
}

// Erase erases the flash range [start, end).
func (f *Flasher) Erase(ctx context.Context, start, end uint32) error {
	cmd := isp.EraseFlash{Start: start, End: end}
	resp, err := f.transport.Exchange(ctx, cmd.CommandID(), cmd.Payload())
	if err != nil {
		return fmt.Errorf("erase flash 0x%X-0x%X: %w", start, end, err)
	}

	return cmd.ParseResponse(resp)
}

// Write programs data into flash starting at the given address, splitting
// it into chunks of the configured size. The target range must have been
// erased first.
func (f *Flasher) Write(ctx context.Context, start uint32, data []byte) error {
	for written := 0; written < len(data); {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		chunk := data[written:]
		if len(chunk) > f.config.ChunkSize {
			chunk = chunk[:f.config.ChunkSize]
		}

		addr := start + uint32(written)
		cmd := isp.WriteFlash{Start: addr, Data: chunk}
		resp, err := f.transport.Exchange(ctx, cmd.CommandID(), cmd.Payload())
		if err != nil {
			return fmt.Errorf("write flash at 0x%X: %w", addr, err)
		}
		if err := cmd.ParseResponse(resp); err != nil {
			return fmt.Errorf("write flash at 0x%X: %w", addr, err)
		}

		written += len(chunk)
	}

	return nil
}

// Flash performs the complete flashing sequence for one image:
//  1. Query boot info (and report the detected flash pin)
//  2. Erase the target range
//  3. Write the image in chunks with progress tracking
//
// The operation can be cancelled via context between chunks.
func (f *Flasher) Flash(ctx context.Context, addr uint32, image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("image cannot be empty")
	}

	startTime := time.Now()

	f.reportProgress(Progress{
		Phase:      PhaseQuerying,
		TotalBytes: len(image),
	})

	info, err := f.BootInfo(ctx)
	if err != nil {
		return err
	}

	f.logDebug("boot info",
		"boot_rom_version", fmt.Sprintf("% X", info.BootROMVersion),
		"chip_id", fmt.Sprintf("%X", info.ChipID),
		"flash_pin", info.FlashPin(),
	)

	f.reportProgress(Progress{
		Phase:       PhaseErasing,
		TotalBytes:  len(image),
		ElapsedTime: time.Since(startTime),
	})

	end := addr + uint32(len(image))
	if err := f.Erase(ctx, addr, end); err != nil {
		return err
	}

	for written := 0; written < len(image); {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		chunk := image[written:]
		if len(chunk) > f.config.ChunkSize {
			chunk = chunk[:f.config.ChunkSize]
		}

		if err := f.Write(ctx, addr+uint32(written), chunk); err != nil {
			return err
		}
		written += len(chunk)

		f.reportProgress(Progress{
			Phase:        PhaseWriting,
			BytesWritten: written,
			TotalBytes:   len(image),
			Percentage:   float64(written) / float64(len(image)) * 100,
			ElapsedTime:  time.Since(startTime),
		})
	}

	f.reportProgress(Progress{
		Phase:        PhaseComplete,
		BytesWritten: len(image),
		TotalBytes:   len(image),
		Percentage:   100,
		ElapsedTime:  time.Since(startTime),
	})

	f.logInfo("flashing complete",
		"addr", fmt.Sprintf("0x%X", addr),
		"bytes", len(image),
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// reportProgress calls the progress callback if configured.
func (f *Flasher) reportProgress(progress Progress) {
	if f.config.ProgressCallback != nil {
		f.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (f *Flasher) logDebug(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (f *Flasher) logInfo(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Info(msg, keysAndValues...)
	}
}
