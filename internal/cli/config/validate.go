package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validOutputs    = []string{"auto", "text", "markdown", "json"}
)

// Validate checks the configuration for values no command can use.
func (c *Config) Validate() error {
	var errs []error
	if !oneOf(c.LogLevel, validLogLevels) {
		errs = append(errs, fmt.Errorf("log_level must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), c.LogLevel))
	}
	if !oneOf(c.LogFormat, validLogFormats) {
		errs = append(errs, fmt.Errorf("log_format must be one of %s, got %q",
			strings.Join(validLogFormats, ", "), c.LogFormat))
	}
	if !oneOf(c.OutputFormat, validOutputs) {
		errs = append(errs, fmt.Errorf("output must be one of %s, got %q",
			strings.Join(validOutputs, ", "), c.OutputFormat))
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
