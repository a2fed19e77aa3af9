package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"golang-credit-cleaning-service/internal/compression"
	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

// WriteFile writes df to path, compressing it when the path ends in a
// compression extension. If the destination cannot be created the table is
// written next to it under a _backup name instead.
func (tw *TableWriter) WriteFile(df dataframe.DataFrame, path string) (string, error) {
	codec, _ := compression.Detect(path)
	if !codec.CanWrite() {
		return "", errors.ConfigurationError(errors.CodeInvalidConfig, "output", path,
			fmt.Errorf("%s output is not supported", codec)).
			WithSuggestion("use a .gz, .zst, .xz or .lz4 extension, or none")
	}

	log := tw.logger.WithFields(logger.Fields{
		"output": path,
		"format": tw.config.Format,
		"codec":  codec,
	})
	log.Info("Writing cleaned table")

	err := tw.writeFile(df, path, codec)
	if err == nil {
		return path, nil
	}

	if !isFileError(err) {
		log.WithError(err).Error("Table output failed")
		return "", wrapOutputError(path, err)
	}

	backup := backupPath(path)
	log.WithError(err).WithField("backup_file", backup).Warn("Primary output failed, attempting backup location")

	if backupErr := tw.writeFile(df, backup, codec); backupErr != nil {
		return "", errors.InternalError(errors.CodeUnexpectedError, "table output fallback",
			fmt.Errorf("both primary and backup output failed: primary=%v, backup=%v", err, backupErr)).
			WithContext("output", path)
	}

	fmt.Fprintf(os.Stderr, "Warning: Could not write to %s, table saved to %s\n", path, backup)
	return backup, nil
}

func (tw *TableWriter) writeFile(df dataframe.DataFrame, path string, codec compression.Codec) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := tw.writeCompressed(df, file, codec); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

// writeCompressed writes df through an encoder for codec
func (tw *TableWriter) writeCompressed(df dataframe.DataFrame, w io.Writer, codec compression.Codec) error {
	enc, err := compression.NewWriter(w, codec)
	if err != nil {
		return err
	}

	tw.logger.WithField("destination", describeWriter(w)).Debug("Encoding table")
	if err := tw.WriteTable(df, enc); err != nil {
		enc.Close()
		return err
	}

	return enc.Close()
}

// backupPath inserts _backup before the format extension, keeping any
// compression extension after it
func backupPath(path string) string {
	codec, base := compression.Detect(path)
	suffix := path[len(base):]
	if codec == compression.None {
		suffix = ""
	}

	dir := filepath.Dir(base)
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	name = name[:len(name)-len(ext)]

	return filepath.Join(dir, fmt.Sprintf("%s_backup%s%s", name, ext, suffix))
}

func wrapOutputError(path string, err error) error {
	if cleanerErr, ok := errors.AsCleanerError(err); ok {
		return cleanerErr
	}

	return errors.InternalError(errors.CodeUnexpectedError, "table output", err).
		WithContext("output", path).
		WithSuggestion("Check the output destination and format settings")
}

// isFileError checks if the error is file-related
func isFileError(err error) bool {
	return os.IsPermission(err) ||
		os.IsNotExist(err) ||
		os.IsExist(err) ||
		isSpaceError(err)
}

func isSpaceError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no space left") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "device full")
}

func describeWriter(w io.Writer) string {
	switch v := w.(type) {
	case *os.File:
		if v.Name() != "" {
			return fmt.Sprintf("file:%s", v.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", w)
	}
}
