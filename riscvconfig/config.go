// Package riscvconfig loads and saves the assembler/service/CLI
// configuration, grounded on the teacher's config package: a Config
// struct of nested, toml-tagged sections, persisted via
// github.com/BurntSushi/toml.
package riscvconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/riscv-tools/riscv-as/assembler"
)

// Config covers the assembler's construction-time knobs plus the
// service and CLI front ends built on top of it.
type Config struct {
	Assembler struct {
		TextStart         string `toml:"text_start"`
		DataStart         string `toml:"data_start"`
		BSSStart          string `toml:"bss_start"`
		CommentChar       string `toml:"comment_char"`
		EnabledExtensions string `toml:"enabled_extensions"`
		XLEN              int    `toml:"xlen"`
	} `toml:"assembler"`

	Service struct {
		Port int    `toml:"port"`
		CORS string `toml:"cors"`
	} `toml:"service"`

	CLI struct {
		OutputFormat string `toml:"output_format"` // "text" or "json"
		Color        bool   `toml:"color"`
	} `toml:"cli"`
}

// DefaultConfig returns a configuration matching the spec's documented
// defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Assembler.TextStart = "0x0"
	cfg.Assembler.DataStart = "0x10000000"
	cfg.Assembler.BSSStart = "0x11000000"
	cfg.Assembler.CommentChar = "#"
	cfg.Assembler.EnabledExtensions = "M"
	cfg.Assembler.XLEN = 64

	cfg.Service.Port = 8080
	cfg.Service.CORS = "*"

	cfg.CLI.OutputFormat = "text"
	cfg.CLI.Color = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "riscv-as")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "riscv-as")

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

// LoadFrom loads configuration from the specified file, returning
// defaults unchanged if it doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// AssemblerConfig translates the TOML-friendly string fields into the
// assembler.Config the pipeline actually consumes.
func (c *Config) AssemblerConfig() (assembler.Config, error) {
	textStart, err := parseUint(c.Assembler.TextStart)
	if err != nil {
		return assembler.Config{}, fmt.Errorf("text_start: %w", err)
	}
	dataStart, err := parseUint(c.Assembler.DataStart)
	if err != nil {
		return assembler.Config{}, fmt.Errorf("data_start: %w", err)
	}
	bssStart, err := parseUint(c.Assembler.BSSStart)
	if err != nil {
		return assembler.Config{}, fmt.Errorf("bss_start: %w", err)
	}
	if len(c.Assembler.CommentChar) != 1 {
		return assembler.Config{}, fmt.Errorf("comment_char must be exactly one character, got %q", c.Assembler.CommentChar)
	}

	return assembler.Config{
		TextStart:   textStart,
		DataStart:   dataStart,
		BSSStart:    bssStart,
		CommentChar: c.Assembler.CommentChar[0],
	}, nil
}

func parseUint(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err == nil {
		return v, nil
	}
	_, err = fmt.Sscanf(s, "%d", &v)
	return v, err
}
