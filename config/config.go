package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the compiler's memory map, strictness toggles, and
// disassembly display preferences.
type Config struct {
	Memory struct {
		CodeStart  int `toml:"code_start"`  // CODE_START; override for non-standard interpreters
		BCDScratch int `toml:"bcd_scratch"` // reserved scratch bytes after code, before data
	} `toml:"memory"`

	Compiler struct {
		StrictBounds  bool `toml:"strict_bounds"`   // enforce DATA_START+data_length <= 0x1000
		MaxSpriteRows int  `toml:"max_sprite_rows"` // enforce the 1..15 row invariant
	} `toml:"compiler"`

	Disasm struct {
		BytesPerLine int    `toml:"bytes_per_line"`
		NumberFormat string `toml:"number_format"` // hex | dec
	} `toml:"disasm"`
}

// DefaultConfig returns the memory map and strictness values spec.md
// hard-codes: CODE_START 0x200, 3 BCD scratch bytes, 15 max sprite rows,
// strict bounds checking on.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Memory.CodeStart = 0x200
	cfg.Memory.BCDScratch = 3

	cfg.Compiler.StrictBounds = true
	cfg.Compiler.MaxSpriteRows = 15

	cfg.Disasm.BytesPerLine = 8
	cfg.Disasm.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\c8c\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "c8c")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/c8c/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "c8c")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: it yields the default configuration, since `c8c.toml` is
// optional (spec.md's CLI contract runs fine with no config at all).
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Compiler.MaxSpriteRows < 1 || cfg.Compiler.MaxSpriteRows > 15 {
		return nil, fmt.Errorf("config: max_sprite_rows must be in 1..15, got %d", cfg.Compiler.MaxSpriteRows)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
