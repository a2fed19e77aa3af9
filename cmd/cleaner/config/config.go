package config

import (
	"fmt"
	"io"
	"strings"

	"golang-credit-cleaning-service/internal/parsers"
	"golang-credit-cleaning-service/internal/pipeline"
	"golang-credit-cleaning-service/internal/reporter"
	"golang-credit-cleaning-service/pkg/logger"
)

// ExportProfile represents a pre-configured portfolio export layout
type ExportProfile struct {
	Name        string
	Description string
	Config      *parsers.LoaderConfig
}

// GetExportProfiles returns the known export layouts
func GetExportProfiles() []ExportProfile {
	return []ExportProfile{
		{
			Name:        "standard",
			Description: "Comma-delimited ISO-8859-1 export from the card system",
			Config:      parsers.DefaultLoaderConfig(),
		},
		{
			Name:        "utf8",
			Description: "Comma-delimited UTF-8 export, validated line by line",
			Config: &parsers.LoaderConfig{
				Encoding:        parsers.EncodingUTF8,
				Delimiter:       ',',
				MaxIssueSamples: 20,
			},
		},
		{
			Name:        "tsv",
			Description: "Tab-delimited ISO-8859-1 export",
			Config: &parsers.LoaderConfig{
				Encoding:        parsers.EncodingLatin1,
				Delimiter:       '\t',
				MaxIssueSamples: 20,
			},
		},
	}
}

// GetExportProfile returns a copy of the loader configuration for a profile name
func GetExportProfile(name string) (*parsers.LoaderConfig, error) {
	for _, profile := range GetExportProfiles() {
		if strings.EqualFold(profile.Name, name) {
			cfg := *profile.Config
			return &cfg, nil
		}
	}

	return nil, fmt.Errorf("unknown export profile: %s", name)
}

// ParseDelimiter converts a flag value to a delimiter rune
func ParseDelimiter(value string) (rune, error) {
	switch value {
	case ",", "comma":
		return ',', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter %q (use comma or tab)", value)
	}
}

// CreateLoaderConfig builds the loader configuration from a profile and
// optional encoding/delimiter overrides. Empty overrides keep the profile value.
func CreateLoaderConfig(profile, encoding, delimiter string) (*parsers.LoaderConfig, error) {
	if profile == "" {
		profile = "standard"
	}

	config, err := GetExportProfile(profile)
	if err != nil {
		return nil, err
	}

	if encoding != "" {
		enc, err := parsers.ParseEncoding(encoding)
		if err != nil {
			return nil, err
		}
		config.Encoding = enc
	}

	if delimiter != "" {
		d, err := ParseDelimiter(delimiter)
		if err != nil {
			return nil, err
		}
		config.Delimiter = d
	}

	return config, config.Validate()
}

// CreatePipelineConfig creates a cleaning run configuration
func CreatePipelineConfig(loader *parsers.LoaderConfig, log logger.Logger, callbacks ...pipeline.ProgressCallback) *pipeline.Config {
	config := pipeline.DefaultConfig()

	if loader != nil {
		config.Loader = loader
	}
	config.Logger = log
	config.ProgressCallbacks = callbacks

	return config
}

// CreateOutputConfig creates an output configuration. With no explicit format
// the format is taken from the output file name, falling back to CSV.
func CreateOutputConfig(format, summary, outputFile string) (*reporter.OutputConfig, error) {
	config := reporter.DefaultOutputConfig()

	switch {
	case format != "":
		config.Format = reporter.OutputFormat(strings.ToLower(format))
	case outputFile != "":
		if inferred, ok := reporter.FormatFromPath(outputFile); ok {
			config.Format = inferred
		}
	}

	if summary != "" {
		config.Summary = reporter.SummaryFormat(strings.ToLower(summary))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// A binary table on a terminal is never what the caller wants.
	if outputFile == "" && (config.Format == reporter.FormatXLSX || config.Format == reporter.FormatParquet) {
		return nil, fmt.Errorf("%s output requires --output", config.Format)
	}

	return config, nil
}

// CreateLoggerConfig creates a logger configuration writing to w. Verbose
// forces debug level.
func CreateLoggerConfig(level, format string, verbose bool, w io.Writer) (*logger.Config, error) {
	config := logger.DefaultConfig()

	if level != "" {
		config.Level = logger.Level(strings.ToLower(level))
	}
	if verbose {
		config.Level = logger.DebugLevel
	}
	if format != "" {
		config.Format = logger.Format(strings.ToLower(format))
	}
	if w != nil {
		config.Output = logger.WriterOutput
		config.Writer = w
	}

	return config, config.Validate()
}

// ValidateConfig validates that all required configurations are valid
func ValidateConfig(pipelineConfig *pipeline.Config, outputConfig *reporter.OutputConfig) error {
	if err := pipelineConfig.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}

	if err := outputConfig.Validate(); err != nil {
		return fmt.Errorf("invalid output config: %w", err)
	}

	return nil
}
