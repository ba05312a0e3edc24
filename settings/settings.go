// Package settings persists flashing tool defaults (serial port, baud
// rate, chip name) as a TOML file.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings are the persisted flashing defaults.
type Settings struct {
	// Port is the serial port device name
	Port string `toml:"port"`

	// Baud is the serial baud rate
	Baud int `toml:"baud"`

	// Chip is the target chip name
	Chip string `toml:"chip"`

	// FlashAddr is the default flash address for images without one
	FlashAddr uint32 `toml:"flash_addr"`
}

// Default returns the built-in defaults.
func Default() Settings {
	return Settings{
		Baud:      115200,
		Chip:      "bl602",
		FlashAddr: 0x2000,
	}
}

// Load reads settings from the TOML file at path, filling unset fields
// with defaults. A missing file is not an error; it yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Save writes settings to the TOML file at path, creating parent
// directories as needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close settings file: %w", err)
	}
	return nil
}
