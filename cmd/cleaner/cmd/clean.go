package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-credit-cleaning-service/cmd/cleaner/config"
	"golang-credit-cleaning-service/internal/pipeline"
	"golang-credit-cleaning-service/internal/reporter"
	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

// Flags for the clean command
var (
	inputFile     string
	outputFile    string
	outputFormat  string
	encoding      string
	delimiter     string
	profile       string
	summaryFormat string
	sheetName     string
	showProgress  bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a credit-card portfolio export",
	Long: `Clean loads a portfolio export, removes personal loans, new customers,
suspicious overdrafts and irregularly inactive accounts, and adds payment
behaviour, debt category and delinquency labels.

Input may be CSV, TSV, XLSX or Parquet, optionally compressed (.gz, .zst,
.xz, .lz4, .bz2). The output format follows --format or the output file
extension; a trailing .gz, .zst, .xz or .lz4 compresses the output.

Examples:
  # Clean to stdout as CSV
  cleaner clean --input cartera.csv

  # Parquet output with a JSON run summary
  cleaner clean --input cartera.csv --output limpio.parquet --summary json

  # Tab-delimited UTF-8 export, compressed CSV output
  cleaner clean -i cartera.tsv -e utf8 --delimiter tab -o limpio.csv.zst

  # With progress indicators
  cleaner clean -i cartera.csv -o limpio.xlsx --progress`,

	PreRunE: validateCleanFlags,
	RunE:    runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	// Input flags
	cleanCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to the portfolio export (required)")
	cleanCmd.Flags().StringVarP(&encoding, "encoding", "e", "", "text encoding of delimited input: latin1, utf8 (default from profile)")
	cleanCmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter of delimited input: comma, tab (default from profile)")
	cleanCmd.Flags().StringVarP(&profile, "profile", "p", "standard", "export profile: standard, utf8, tsv")

	// Output flags
	cleanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file path (default: stdout)")
	cleanCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: csv, json, xlsx, parquet (default from output extension)")
	cleanCmd.Flags().StringVar(&summaryFormat, "summary", "console", "run summary: console, json, none")
	cleanCmd.Flags().StringVar(&sheetName, "sheet-name", "clientes", "worksheet name for xlsx output")

	// UI flags
	cleanCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")

	// Bind flags to viper
	for _, name := range []string{"input", "encoding", "delimiter", "profile", "output", "format", "summary", "sheet-name", "progress"} {
		viper.BindPFlag(name, cleanCmd.Flags().Lookup(name))
	}
}

func validateCleanFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFile = viper.GetString("input")
	encoding = viper.GetString("encoding")
	delimiter = viper.GetString("delimiter")
	profile = viper.GetString("profile")
	outputFile = viper.GetString("output")
	outputFormat = viper.GetString("format")
	summaryFormat = viper.GetString("summary")
	sheetName = viper.GetString("sheet-name")
	showProgress = viper.GetBool("progress")

	if inputFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "input", nil, nil).
			WithSuggestion("pass the portfolio export with --input")
	}

	if err := validateFileExists(inputFile, "portfolio file"); err != nil {
		return err
	}

	if _, err := config.CreateLoaderConfig(profile, encoding, delimiter); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "input", inputFile, err)
	}

	if _, err := config.CreateOutputConfig(outputFormat, summaryFormat, outputFile); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output", outputFile, err)
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return errors.FileError(errors.CodeDirectoryError, dir, fmt.Errorf("output directory does not exist"))
			}
		}
		if sameFile(inputFile, outputFile) {
			return errors.ConfigurationError(errors.CodeConfigConflict, "output", outputFile,
				fmt.Errorf("output would overwrite the input file"))
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, description, nil, nil)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeDirectoryError, filePath, fmt.Errorf("%s is a directory, expected a file", description))
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}
	file.Close()

	return nil
}

func sameFile(a, b string) bool {
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

func runClean(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	log := logger.GetGlobalLogger().WithComponent("cli")

	if viper.GetBool("verbose") {
		fmt.Fprintf(stderr, "Starting cleaning run...\n")
		fmt.Fprintf(stderr, "Input: %s\n", inputFile)
		if outputFile != "" {
			fmt.Fprintf(stderr, "Output: %s\n", outputFile)
		}
	}

	// Create configurations
	loaderConfig, err := config.CreateLoaderConfig(profile, encoding, delimiter)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "input", inputFile, err)
	}

	outputConfig, err := config.CreateOutputConfig(outputFormat, summaryFormat, outputFile)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output", outputFile, err)
	}
	outputConfig.SheetName = sheetName

	var callbacks []pipeline.ProgressCallback
	if showProgress {
		callbacks = append(callbacks, progressPrinter(stderr))
	}
	pipelineConfig := config.CreatePipelineConfig(loaderConfig, logger.GetGlobalLogger(), callbacks...)

	if err := config.ValidateConfig(pipelineConfig, outputConfig); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "cleaning", nil, err)
	}

	cleaner, err := pipeline.NewCleaner(pipelineConfig)
	if err != nil {
		return err
	}

	writer, err := reporter.NewTableWriter(outputConfig, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	summary, err := reporter.NewSummaryGenerator(outputConfig)
	if err != nil {
		return err
	}

	result, err := cleaner.Clean(ctx, inputFile)
	if showProgress {
		fmt.Fprintf(stderr, "\n") // New line after progress
	}
	if err != nil {
		return err
	}

	// The summary goes to stderr whenever the table itself is on stdout.
	summaryOut := stdout
	if outputFile == "" {
		if err := writer.WriteTable(result.Frame, stdout); err != nil {
			return errors.InternalError(errors.CodeUnexpectedError, "table output", err)
		}
		summaryOut = stderr
	} else {
		written, err := writer.WriteFile(result.Frame, outputFile)
		if err != nil {
			return err
		}
		log.WithField("output", written).Info("Cleaned table written")
	}

	if err := summary.Generate(result.Report, summaryOut); err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(stderr, "\nCleaning completed successfully.\n")
		fmt.Fprintf(stderr, "%s\n", result.Report)
	}

	return nil
}

// progressPrinter renders stage progress on a single terminal line
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	return func(p pipeline.Progress) {
		fmt.Fprintf(w, "\r[%d/%d] %-14s (%.1f%% complete)",
			p.CompletedSteps, p.TotalSteps, p.Stage.Name, p.PercentComplete())
	}
}
