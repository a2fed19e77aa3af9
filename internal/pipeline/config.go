package pipeline

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"golang-credit-cleaning-service/internal/parsers"
	"golang-credit-cleaning-service/pkg/logger"
)

// Config holds configuration for a cleaning run
type Config struct {
	Loader *parsers.LoaderConfig `json:"loader" mapstructure:"loader"`

	// Logger receives stage progress; the global logger is used when nil.
	Logger logger.Logger `json:"-" mapstructure:"-" copy:"-"`

	// ProgressCallbacks are invoked after every completed stage.
	ProgressCallbacks []ProgressCallback `json:"-" mapstructure:"-" copy:"-"`
}

// DefaultConfig returns the configuration for comma-delimited Latin-1 exports
func DefaultConfig() *Config {
	return &Config{
		Loader: parsers.DefaultLoaderConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Loader == nil {
		return fmt.Errorf("loader configuration is required")
	}
	if err := c.Loader.Validate(); err != nil {
		return fmt.Errorf("invalid loader configuration: %w", err)
	}
	return nil
}

// clone returns an independent copy so that callers may keep mutating the
// configuration they passed in. Logger and callbacks are shared.
func (c *Config) clone() (*Config, error) {
	out := &Config{}
	if err := deepcopy.Copy(out, c); err != nil {
		return nil, err
	}
	out.Logger = c.Logger
	out.ProgressCallbacks = append([]ProgressCallback(nil), c.ProgressCallbacks...)
	return out, nil
}
