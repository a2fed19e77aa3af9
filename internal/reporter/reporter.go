// Package reporter writes cleaned portfolio tables and run summaries.
//
// Supported table formats:
//   - CSV: the default, one header row and nulls written as empty cells
//   - JSON: an array of row objects with nulls written as null
//   - XLSX: a single worksheet with a bold header row
//   - Parquet: typed nullable columns with zstd-compressed pages
//
// Run summaries are written for the console or as JSON.
//
// Example usage:
//
//	writer, err := reporter.NewTableWriter(reporter.DefaultOutputConfig(), log)
//	err = writer.WriteFile(result.Frame, "limpio.parquet")
package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"golang-credit-cleaning-service/internal/compression"
	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

// OutputFormat represents the supported table output formats
type OutputFormat string

const (
	FormatCSV     OutputFormat = "csv"
	FormatJSON    OutputFormat = "json"
	FormatXLSX    OutputFormat = "xlsx"
	FormatParquet OutputFormat = "parquet"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatCSV, FormatJSON, FormatXLSX, FormatParquet:
		return true
	default:
		return false
	}
}

// FormatFromPath infers the output format from a file name, ignoring any
// compression extension. The second return is false for unknown extensions.
func FormatFromPath(path string) (OutputFormat, bool) {
	_, base := compression.Detect(path)
	format := OutputFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), "."))
	return format, format.IsValid()
}

// SummaryFormat represents how the run summary is printed
type SummaryFormat string

const (
	SummaryConsole SummaryFormat = "console"
	SummaryJSON    SummaryFormat = "json"
	SummaryNone    SummaryFormat = "none"
)

// IsValid checks if the summary format is supported
func (f SummaryFormat) IsValid() bool {
	switch f {
	case SummaryConsole, SummaryJSON, SummaryNone:
		return true
	default:
		return false
	}
}

// maxSheetName is the longest worksheet name Excel accepts
const maxSheetName = 31

// OutputConfig holds configuration options for writing results
type OutputConfig struct {
	Format  OutputFormat  `json:"format" mapstructure:"format"`
	Summary SummaryFormat `json:"summary" mapstructure:"summary"`

	// XLSX options
	SheetName string `json:"sheet_name" mapstructure:"sheet_name"`

	// Parquet options
	RowGroupSize int64 `json:"row_group_size" mapstructure:"row_group_size"`

	// Console summary options
	MaxIssueSamples int `json:"max_issue_samples" mapstructure:"max_issue_samples"`
}

// DefaultOutputConfig returns a default output configuration
func DefaultOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format:          FormatCSV,
		Summary:         SummaryConsole,
		SheetName:       "clientes",
		RowGroupSize:    64 * 1024,
		MaxIssueSamples: 10,
	}
}

// Validate validates the output configuration
func (c *OutputConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if !c.Summary.IsValid() {
		return fmt.Errorf("invalid summary format: %s", c.Summary)
	}

	name := strings.TrimSpace(c.SheetName)
	if name == "" || len(name) > maxSheetName {
		return fmt.Errorf("sheet name must be 1-%d characters, got %q", maxSheetName, c.SheetName)
	}

	if c.RowGroupSize <= 0 {
		return fmt.Errorf("row group size must be positive, got %d", c.RowGroupSize)
	}

	if c.MaxIssueSamples < 0 {
		return fmt.Errorf("max issue samples cannot be negative")
	}

	return nil
}

// TableWriter writes cleaned tables in the configured format
type TableWriter struct {
	config *OutputConfig
	logger logger.Logger
}

// NewTableWriter creates a new table writer with the specified configuration
func NewTableWriter(config *OutputConfig, log logger.Logger) (*TableWriter, error) {
	if config == nil {
		config = DefaultOutputConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "output", config.Format, err).
			WithSuggestion("use --format csv, json, xlsx or parquet")
	}

	return &TableWriter{
		config: config,
		logger: log.WithComponent("reporter"),
	}, nil
}

// Format returns the configured output format
func (tw *TableWriter) Format() OutputFormat {
	return tw.config.Format
}

// WriteTable writes df to w in the configured format
func (tw *TableWriter) WriteTable(df dataframe.DataFrame, w io.Writer) error {
	if df.Err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "table output", df.Err)
	}

	switch tw.config.Format {
	case FormatCSV:
		return writeCSV(df, w)
	case FormatJSON:
		return df.WriteJSON(w)
	case FormatXLSX:
		return tw.writeXLSX(df, w)
	case FormatParquet:
		return tw.writeParquet(df, w)
	default:
		return fmt.Errorf("unsupported output format: %s", tw.config.Format)
	}
}

// writeCSV writes a header row and one record per row. Nulls are written as
// empty cells so that reloading the table keeps numeric columns numeric.
func writeCSV(df dataframe.DataFrame, w io.Writer) error {
	cw := csv.NewWriter(w)
	names := df.Names()
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
	}

	record := make([]string, len(cols))
	for r := 0; r < df.Nrow(); r++ {
		for c, col := range cols {
			el := col.Elem(r)
			if el.IsNA() {
				record[c] = ""
				continue
			}
			record[c] = el.String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellValue returns the typed value of a cell, or nil for nulls
func cellValue(col series.Series, i int) interface{} {
	el := col.Elem(i)
	if el.IsNA() {
		return nil
	}
	switch col.Type() {
	case series.Int:
		if v, err := el.Int(); err == nil {
			return v
		}
	case series.Float:
		return el.Float()
	case series.Bool:
		if v, err := el.Bool(); err == nil {
			return v
		}
	}
	return el.String()
}

// writeXLSX streams the table into a single worksheet
func (tw *TableWriter) writeXLSX(df dataframe.DataFrame, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := tw.config.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open worksheet stream: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = excelize.Cell{StyleID: style, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = df.Col(name)
	}

	row := make([]interface{}, len(cols))
	for r := 0; r < df.Nrow(); r++ {
		for c, col := range cols {
			row[c] = cellValue(col, r)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// arrowType maps a column type to its nullable Arrow type
func arrowType(t series.Type) arrow.DataType {
	switch t {
	case series.Int:
		return arrow.PrimitiveTypes.Int64
	case series.Float:
		return arrow.PrimitiveTypes.Float64
	case series.Bool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// buildArrowColumn copies one column into an Arrow array
func buildArrowColumn(pool memory.Allocator, col series.Series) arrow.Array {
	n := col.Len()
	switch col.Type() {
	case series.Int:
		b := array.NewInt64Builder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			el := col.Elem(i)
			v, err := el.Int()
			if el.IsNA() || err != nil {
				b.AppendNull()
				continue
			}
			b.Append(int64(v))
		}
		return b.NewArray()
	case series.Float:
		b := array.NewFloat64Builder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			el := col.Elem(i)
			if el.IsNA() {
				b.AppendNull()
				continue
			}
			b.Append(el.Float())
		}
		return b.NewArray()
	case series.Bool:
		b := array.NewBooleanBuilder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			el := col.Elem(i)
			v, err := el.Bool()
			if el.IsNA() || err != nil {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(pool)
		defer b.Release()
		for i := 0; i < n; i++ {
			el := col.Elem(i)
			if el.IsNA() {
				b.AppendNull()
				continue
			}
			b.Append(el.String())
		}
		return b.NewArray()
	}
}

// writeParquet writes the table as one Arrow record with zstd pages
func (tw *TableWriter) writeParquet(df dataframe.DataFrame, w io.Writer) error {
	pool := memory.NewGoAllocator()

	names := df.Names()
	fields := make([]arrow.Field, len(names))
	arrays := make([]arrow.Array, len(names))
	for i, name := range names {
		col := df.Col(name)
		fields[i] = arrow.Field{Name: name, Type: arrowType(col.Type()), Nullable: true}
		arrays[i] = buildArrowColumn(pool, col)
	}
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, arrays, int64(df.Nrow()))
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Zstd))
	// The parquet writer closes sinks that implement io.Closer; closing is left to the caller.
	sink := struct{ io.Writer }{w}
	if err := pqarrow.WriteTable(table, sink, tw.config.RowGroupSize, props, pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}
