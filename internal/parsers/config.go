package parsers

import (
	"fmt"
	"strings"
)

// Encoding names the character set of delimited input files
type Encoding string

const (
	// EncodingLatin1 is the ISO-8859-1 charset used by portfolio exports
	EncodingLatin1 Encoding = "latin1"
	EncodingUTF8   Encoding = "utf8"
)

// ParseEncoding converts a user-supplied name to an Encoding
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin1", "latin-1", "latin", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q (use latin1 or utf8)", name)
	}
}

// LoaderConfig holds configuration for loading a portfolio file
type LoaderConfig struct {
	Encoding  Encoding `json:"encoding" mapstructure:"encoding"`
	Delimiter rune     `json:"delimiter" mapstructure:"delimiter"`
	// MaxIssueSamples bounds the recovered value issues kept for reporting.
	MaxIssueSamples int `json:"max_issue_samples" mapstructure:"max_issue_samples"`
	// EncodingCheckLines limits the UTF-8 validation scan; 0 scans every line.
	EncodingCheckLines int `json:"encoding_check_lines" mapstructure:"encoding_check_lines"`
}

// DefaultLoaderConfig returns the configuration for comma-delimited Latin-1 exports
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Encoding:           EncodingLatin1,
		Delimiter:          ',',
		MaxIssueSamples:    20,
		EncodingCheckLines: 0,
	}
}

// Validate checks if the loader configuration is valid
func (c *LoaderConfig) Validate() error {
	if _, err := ParseEncoding(string(c.Encoding)); err != nil {
		return err
	}

	if c.Delimiter != ',' && c.Delimiter != '\t' {
		return fmt.Errorf("delimiter must be ',' or tab, got %q", c.Delimiter)
	}

	if c.MaxIssueSamples < 0 {
		return fmt.Errorf("max issue samples cannot be negative")
	}

	if c.EncodingCheckLines < 0 {
		return fmt.Errorf("encoding check lines cannot be negative")
	}

	return nil
}
