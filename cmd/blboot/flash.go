package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fwtools/go-blboot/bootheader"
	"github.com/fwtools/go-blboot/elfconv"
	"github.com/fwtools/go-blboot/flasher"
	"github.com/fwtools/go-blboot/serialport"
	"github.com/fwtools/go-blboot/settings"
)

func openTransport(opts *options) (*serialport.Port, error) {
	if opts.port == "" {
		return nil, fmt.Errorf("no serial port specified: use --port or the settings file")
	}

	port, err := serialport.Open(opts.port, opts.baud)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"port": opts.port,
		"baud": opts.baud,
		"chip": opts.chip,
	}).Debug("serial port opened")

	if err := port.Handshake(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("device did not enter ISP mode: %w", err)
	}

	return port, nil
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Query boot ROM information from a connected device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := openTransport(opts)
			if err != nil {
				return err
			}
			defer func() { _ = port.Close() }()

			fl := flasher.New(port, flasher.WithLogger(&logrusAdapter{l: log}))
			info, err := fl.BootInfo(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("boot ROM version: % X\n", info.BootROMVersion)
			fmt.Printf("chip ID:          %X\n", info.ChipID)
			fmt.Printf("flash info:       0x%08X\n", info.FlashInfo)
			fmt.Printf("flash pin:        %d\n", info.FlashPin())
			return nil
		},
	}
}

func newFlashCmd(opts *options) *cobra.Command {
	var (
		addr      uint32
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "flash <image>",
		Short: "Repair an image header if needed, then write the image to flash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if !cmd.Flags().Changed("addr") {
				addr = opts.flashAddr
			}

			image, imageAddr, err := loadImage(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") || imageAddr == 0 {
				imageAddr = addr
			}

			port, err := openTransport(opts)
			if err != nil {
				return err
			}
			defer func() { _ = port.Close() }()

			fl := flasher.New(port,
				flasher.WithChunkSize(chunkSize),
				flasher.WithLogger(&logrusAdapter{l: log}),
				flasher.WithProgressCallback(printProgress),
			)

			if err := fl.Flash(cmd.Context(), imageAddr, image); err != nil {
				fmt.Println()
				return err
			}
			return nil
		},
	}

	cmd.Flags().Uint32Var(&addr, "addr", settings.Default().FlashAddr, "flash address (overrides the settings file)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", flasher.DefaultChunkSize, "write chunk size in bytes")

	return cmd
}

// isELF reports whether the file at path starts with the ELF magic. Files
// shorter than the magic are treated as raw images.
func isELF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false, nil
	}
	return bytes.Equal(magic[:], []byte{0x7F, 'E', 'L', 'F'}), nil
}

// loadImage reads a flashable image from disk. ELF files are flattened and
// keep their own load address; raw binaries get their boot header checked
// and repaired in place before flashing.
func loadImage(path string) ([]byte, uint32, error) {
	elfImage, err := isELF(path)
	if err != nil {
		return nil, 0, err
	}
	if elfImage {
		img, err := elfconv.ConvertFile(path)
		if err != nil {
			return nil, 0, err
		}
		log.WithFields(logrus.Fields{
			"addr":  fmt.Sprintf("0x%X", img.Addr),
			"bytes": len(img.Data),
		}).Debug("flattened ELF image")
		return img.Data, img.Addr, nil
	}

	plan, err := bootheader.CheckFile(path)
	if err != nil {
		return nil, 0, err
	}
	if !plan.Empty() {
		if err := bootheader.ProcessFile(path, plan); err != nil {
			return nil, 0, err
		}
		log.Info("patched image header before flashing")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read image: %w", err)
	}
	return data, 0, nil
}

func printProgress(p flasher.Progress) {
	switch p.Phase {
	case flasher.PhaseWriting:
		fmt.Printf("\rwriting %d/%d bytes (%.1f%%)", p.BytesWritten, p.TotalBytes, p.Percentage)
	case flasher.PhaseComplete:
		fmt.Printf("\rdone: %d bytes in %s%20s\n", p.BytesWritten, p.ElapsedTime.Round(10*time.Millisecond), "")
	}
}
