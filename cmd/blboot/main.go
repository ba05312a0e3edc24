// Command blboot checks, repairs and flashes boot images for devices that
// speak the serial ISP protocol of the chip's boot ROM.
package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fwtools/go-blboot/settings"
)

var log = logrus.New()

// options are the persistent flags shared by all subcommands, after the
// settings file has been folded in.
type options struct {
	verbose      bool
	settingsPath string
	port         string
	baud         int
	chip         string
	flashAddr    uint32
}

// applySettings folds loaded settings into the flags the user left unset.
// baudSet reports whether --baud was given on the command line.
func applySettings(opts *options, s settings.Settings, baudSet bool) {
	if opts.port == "" {
		opts.port = s.Port
	}
	if !baudSet && s.Baud != 0 {
		opts.baud = s.Baud
	}
	opts.chip = s.Chip
	if s.FlashAddr != 0 {
		opts.flashAddr = s.FlashAddr
	}
}

func main() {
	opts := &options{flashAddr: settings.Default().FlashAddr}

	root := &cobra.Command{
		Use:           "blboot",
		Short:         "Check, repair and flash boot images over the serial ISP protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			s, err := settings.Load(opts.settingsPath)
			if err != nil {
				return err
			}
			applySettings(opts, s, cmd.Flags().Changed("baud"))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.settingsPath, "settings", defaultSettingsPath(), "settings file")
	root.PersistentFlags().StringVarP(&opts.port, "port", "p", "", "serial port device")
	root.PersistentFlags().IntVarP(&opts.baud, "baud", "b", settings.Default().Baud, "serial baud rate")

	root.AddCommand(
		newCheckCmd(),
		newRepairCmd(),
		newInfoCmd(opts),
		newFlashCmd(opts),
	)

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "blboot.toml"
	}
	return filepath.Join(dir, "blboot", "blboot.toml")
}

// kvFields converts alternating key-value pairs into logrus fields.
func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}

// logrusAdapter exposes the CLI logger through the flasher's Logger
// interface.
type logrusAdapter struct {
	l *logrus.Logger
}

func (a *logrusAdapter) Debug(msg string, kv ...interface{}) {
	a.l.WithFields(kvFields(kv)).Debug(msg)
}

func (a *logrusAdapter) Info(msg string, kv ...interface{}) {
	a.l.WithFields(kvFields(kv)).Info(msg)
}

func (a *logrusAdapter) Error(msg string, kv ...interface{}) {
	a.l.WithFields(kvFields(kv)).Error(msg)
}
