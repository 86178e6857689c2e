// Package config loads the portugo CLI configuration.
//
// Values are layered, lowest precedence first: built-in defaults, the
// portugo.yaml project file, PORTUGO_* environment variables and finally
// flags set explicitly on the command line.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	HistoryPath   string        `koanf:"history_path"`
	Verbose       bool          `koanf:"verbose"`
	LogLevel      string        `koanf:"log_level"`
	LogFormat     string        `koanf:"log_format"`
	MaxSteps      uint64        `koanf:"max_steps"`
	MaxDepth      int           `koanf:"max_depth"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
	ServeAddr     string        `koanf:"serve_addr"`
	OutputFormat  string        `koanf:"output"`

	// ProjectRoot is the directory holding portugo.yaml, or the working
	// directory when there is none. Not loaded from any source.
	ProjectRoot string `koanf:"-"`
}

// HistoryEnabled reports whether runs should be recorded.
func (c *Config) HistoryEnabled() bool { return c.HistoryPath != "" }

// Default configuration values.
const (
	DefaultHistoryFile   = ".portugo/history.db"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultWatchDebounce = 200 * time.Millisecond
	DefaultServeAddr     = "127.0.0.1:8765"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default returns a configuration holding only the defaults.
func Default() *Config {
	return &Config{
		HistoryPath:   DefaultHistoryFile,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		WatchDebounce: DefaultWatchDebounce,
		ServeAddr:     DefaultServeAddr,
		OutputFormat:  DefaultOutput,
	}
}
