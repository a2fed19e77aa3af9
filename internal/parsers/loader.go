// Package parsers loads credit-card portfolio exports into a typed table.
//
// A portfolio export is one wide row per customer with seven months of
// statement history. The loader handles the concerns that sit in front of the
// cleaning pipeline:
//   - transparent decompression chosen by file extension
//   - ISO-8859-1 decoding (the export default) or validated UTF-8
//   - CSV, TSV, XLSX and Parquet parsing with per-column type inference
//   - numeric coercion, where unparsable cells become null and are counted
//
// Example usage:
//
//	loader, err := NewLoader(DefaultLoaderConfig())
//	result, err := loader.Load("cartera.csv")
//	fmt.Println(result.Stats)
package parsers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/nao1215/fileparser"
	"golang.org/x/text/encoding/charmap"

	"golang-credit-cleaning-service/internal/compression"
	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadStats holds statistics about a load operation
type LoadStats struct {
	Format        string                 `json:"format"`
	Codec         compression.Codec      `json:"codec"`
	Encoding      Encoding               `json:"encoding,omitempty"`
	Bytes         int                    `json:"bytes"`
	Rows          int                    `json:"rows"`
	Columns       int                    `json:"columns"`
	IntColumns    int                    `json:"int_columns"`
	FloatColumns  int                    `json:"float_columns"`
	StringColumns int                    `json:"string_columns"`
	Issues        *errors.IssueCollector `json:"-"`
}

// String returns a human-readable summary of load statistics
func (s *LoadStats) String() string {
	return fmt.Sprintf("Loaded %d rows x %d columns from %s (%s), %d int / %d float / %d text columns, %s",
		s.Rows, s.Columns, s.Format, s.Codec, s.IntColumns, s.FloatColumns, s.StringColumns, s.Issues.Summary())
}

// LoadResult is the table read from a portfolio file
type LoadResult struct {
	Frame dataframe.DataFrame
	Stats *LoadStats
}

// Loader reads portfolio files into dataframes
type Loader struct {
	config *LoaderConfig
	logger logger.Logger
}

// NewLoader creates a new Loader with the given configuration
func NewLoader(config *LoaderConfig) (*Loader, error) {
	if config == nil {
		config = DefaultLoaderConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "loader", config, err)
	}

	log := logger.GetGlobalLogger().WithComponent("loader")
	log.WithFields(logger.Fields{
		"encoding":  config.Encoding,
		"delimiter": string(config.Delimiter),
	}).Debug("Created loader")

	return &Loader{
		config: config,
		logger: log,
	}, nil
}

// WithLogger returns a copy of the loader that logs through log
func (l *Loader) WithLogger(log logger.Logger) *Loader {
	return &Loader{config: l.config, logger: log.WithComponent("loader")}
}

// Load reads, decodes and parses the file at path
func (l *Loader) Load(path string) (*LoadResult, error) {
	log := l.logger.WithField(logger.FieldFile, path)

	file, err := l.openFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	codec, basePath := compression.Detect(path)
	format, err := l.detectFormat(basePath)
	if err != nil {
		return nil, err
	}

	raw, err := readAll(file, codec)
	if err != nil {
		log.WithError(err).Error("Failed to read file")
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	stats := &LoadStats{
		Format: format.String(),
		Codec:  codec,
		Bytes:  len(raw),
		Issues: errors.NewIssueCollector(l.config.MaxIssueSamples),
	}

	if isDelimited(format) {
		raw, err = l.decode(raw, path)
		if err != nil {
			log.WithError(err).Error("File encoding validation failed")
			return nil, err
		}
		stats.Encoding = l.config.Encoding
	}

	table, err := fileparser.Parse(bytes.NewReader(raw), format)
	if err != nil {
		log.WithError(err).Error("Failed to parse file")
		return nil, classifyParseError(path, err)
	}

	if err := validateHeaders(path, table.Headers); err != nil {
		return nil, err
	}

	frame := buildFrame(table, stats)
	if frame.Err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "frame construction", frame.Err)
	}

	log.WithFields(logger.Fields{
		"rows":    stats.Rows,
		"columns": stats.Columns,
		"format":  stats.Format,
		"codec":   stats.Codec,
		"issues":  stats.Issues.Total(),
	}).Debug(stats.String())

	return &LoadResult{Frame: frame, Stats: stats}, nil
}

// openFile opens the input file, mapping failures to file errors
func (l *Loader) openFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil, errors.FileError(errors.CodeDirectoryError, path, fmt.Errorf("path is a directory"))
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.WithError(err).WithField(logger.FieldFile, path).Error("Failed to open file")

		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}

		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}

	return file, nil
}

// detectFormat maps the uncompressed file name to a parser format
func (l *Loader) detectFormat(path string) (fileparser.FileType, error) {
	ft := fileparser.BaseFileType(fileparser.DetectFileType(path))
	if ft == fileparser.Unsupported && strings.EqualFold(filepath.Ext(path), ".txt") {
		ft = fileparser.CSV
	}

	switch ft {
	case fileparser.CSV:
		if l.config.Delimiter == '\t' {
			return fileparser.TSV, nil
		}
		return ft, nil
	case fileparser.TSV, fileparser.XLSX, fileparser.Parquet:
		return ft, nil
	default:
		return ft, errors.ParseError(errors.CodeUnsupportedExt, path, 0, filepath.Ext(path), nil)
	}
}

func isDelimited(ft fileparser.FileType) bool {
	return ft == fileparser.CSV || ft == fileparser.TSV
}

func readAll(r io.Reader, codec compression.Codec) ([]byte, error) {
	dr, closeFn, err := compression.NewReader(r, codec)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(dr)
	if closeErr := closeFn(); err == nil {
		err = closeErr
	}
	return data, err
}

// decode converts delimited text to UTF-8
func (l *Loader) decode(data []byte, path string) ([]byte, error) {
	if l.config.Encoding == EncodingUTF8 {
		if err := l.validateEncoding(data, path); err != nil {
			return nil, err
		}
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, errors.ParseError(errors.CodeEncodingError, path, 0, "latin1", err)
	}
	return decoded, nil
}

// validateEncoding checks that the data is valid UTF-8, reporting the first bad line
func (l *Loader) validateEncoding(data []byte, path string) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if l.config.EncodingCheckLines > 0 && lineNum > l.config.EncodingCheckLines {
			break
		}
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(
				errors.CodeEncodingError,
				path,
				lineNum,
				"utf8",
				fmt.Errorf("invalid UTF-8 encoding detected"),
			)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return nil
}

// classifyParseError maps parser failures to parse error codes
func classifyParseError(path string, err error) error {
	var csvErr *csv.ParseError
	if stderrors.As(err, &csvErr) {
		code := errors.CodeInvalidFormat
		if stderrors.Is(csvErr.Err, csv.ErrFieldCount) {
			code = errors.CodeMalformedRow
		}
		return errors.ParseError(code, path, csvErr.Line, csvErr.Err.Error(), err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate column name"),
		strings.Contains(msg, "no headers"),
		strings.Contains(msg, "empty"):
		return errors.ParseError(errors.CodeMissingHeader, path, 1, msg, err)
	default:
		return errors.ParseError(errors.CodeInvalidFormat, path, 0, msg, err)
	}
}

// validateHeaders rejects blank column names
func validateHeaders(path string, headers []string) error {
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			return errors.ParseError(
				errors.CodeMissingHeader,
				path,
				1,
				fmt.Sprintf("column %d has no name", i+1),
				nil,
			)
		}
	}
	return nil
}

// buildFrame converts parsed records into typed series
func buildFrame(table *fileparser.TableData, stats *LoadStats) dataframe.DataFrame {
	columns := make([]series.Series, len(table.Headers))
	for c, name := range table.Headers {
		raw := make([]string, len(table.Records))
		for r, record := range table.Records {
			if c < len(record) {
				raw[r] = strings.TrimSpace(record[c])
			}
		}

		col := buildSeries(name, raw, table.ColumnTypes[c], stats.Issues)
		switch col.Type() {
		case series.Int:
			stats.IntColumns++
		case series.Float:
			stats.FloatColumns++
		default:
			stats.StringColumns++
		}
		columns[c] = col
	}

	stats.Rows = len(table.Records)
	stats.Columns = len(columns)
	return dataframe.New(columns...)
}

// buildSeries resolves the final column type. Integer columns stay integer
// only when every value is integral; text columns with no values at all are
// numeric nulls.
func buildSeries(name string, raw []string, inferred fileparser.ColumnType, issues *errors.IssueCollector) series.Series {
	values := make([]string, len(raw))
	present := 0
	for i, v := range raw {
		if v == "" {
			values[i] = "NaN"
			continue
		}
		values[i] = v
		present++
	}

	if present == 0 {
		return series.New(values, series.Float, name)
	}

	switch inferred {
	case fileparser.TypeInteger:
		if allIntegers(raw) {
			return series.New(values, series.Int, name)
		}
		return numericSeries(name, raw, values, issues)
	case fileparser.TypeReal:
		return numericSeries(name, raw, values, issues)
	default:
		return series.New(values, series.String, name)
	}
}

func allIntegers(raw []string) bool {
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, ok := fileparser.ParseValue(v, fileparser.TypeInteger).(int64); !ok {
			return false
		}
	}
	return true
}

// numericSeries builds a float column, nulling and recording unparsable cells
func numericSeries(name string, raw, values []string, issues *errors.IssueCollector) series.Series {
	for i, v := range raw {
		if v == "" {
			continue
		}
		if _, ok := fileparser.ParseValue(v, fileparser.TypeReal).(float64); !ok {
			issues.Add(errors.ValueIssue{Column: name, Row: i, Value: v, Code: errors.CodeInvalidValue})
			values[i] = "NaN"
		}
	}
	return series.New(values, series.Float, name)
}
