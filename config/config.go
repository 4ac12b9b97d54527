package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go-noteroll/display"
	"go-noteroll/sequence"
)

// DisplayConfig controls the note-to-pixel mapping
type DisplayConfig struct {
	XSize     float64 `json:"xSize"`     // pixels per beat
	YSize     float64 `json:"ySize"`     // pixels per semitone
	PitchZero float64 `json:"pitchZero"` // y of pitch 0
	Unit      string  `json:"unit"`
	Fill      string  `json:"fill,omitempty"` // empty = theme accent
	StartBeat float64 `json:"startBeat"`
	EndBeat   float64 `json:"endBeat"`
}

// TerminalConfig maps terminal cells to pixels
type TerminalConfig struct {
	CellWidth  float64 `json:"cellWidth"`
	CellHeight float64 `json:"cellHeight"`
	Palette    string  `json:"palette,omitempty"` // path to a .gpl file
}

// ServerConfig stores HTTP settings
type ServerConfig struct {
	Port int `json:"port"`
}

// FilesConfig controls saving moved notes back to disk
type FilesConfig struct {
	AutoSave   bool `json:"autoSave"`
	DebounceMS int  `json:"debounceMs,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Display  DisplayConfig  `json:"display"`
	Terminal TerminalConfig `json:"terminal"`
	Server   ServerConfig   `json:"server"`
	Files    FilesConfig    `json:"files"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			XSize:     display.DefaultXSize,
			YSize:     display.DefaultYSize,
			PitchZero: display.DefaultPitchZero,
			Unit:      display.DefaultUnit,
			StartBeat: display.DefaultWindow.StartBeat,
			EndBeat:   display.DefaultWindow.EndBeat,
		},
		Terminal: TerminalConfig{
			CellWidth:  10,
			CellHeight: 20,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Files: FilesConfig{
			DebounceMS: int(sequence.DefaultDelay / time.Millisecond),
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-noteroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing files and missing fields fall
// back to defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Options converts the display section to display options. fill is used
// when the config leaves Fill empty.
func (d DisplayConfig) Options(fill string) []display.Option {
	if d.Fill != "" {
		fill = d.Fill
	}
	return []display.Option{
		display.WithSize(d.XSize, d.YSize),
		display.WithPitchZero(d.PitchZero),
		display.WithUnit(d.Unit),
		display.WithFill(fill),
		display.WithWindow(display.Window{StartBeat: d.StartBeat, EndBeat: d.EndBeat}),
	}
}

// Debounce returns the autosave delay
func (f FilesConfig) Debounce() time.Duration {
	if f.DebounceMS <= 0 {
		return sequence.DefaultDelay
	}
	return time.Duration(f.DebounceMS) * time.Millisecond
}
