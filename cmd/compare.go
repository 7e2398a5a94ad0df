// =============================================================================
// Catalog Reconciler - Compare Command
// =============================================================================
//
// This file defines the 'compare' command, which runs one ad-hoc comparison
// without a job file.
//
// COMMAND USAGE:
//   reconciler compare <base> <reference> [flags]
//
// FLAGS:
//   --name           : Job code used in output names (default: base file name)
//   --output-dir     : Where to write the workbook and report
//   --tolerance      : Largest ignored price difference
//   --unit           : Price unit, "whole" or "cents"
//   --strictness     : Rule set, "standard" or "paired"
//   --sheet          : Sheet to read from XLSX inputs
//   --header-row     : 1-based header row
//   --delimiter      : CSV delimiter
//   --encoding       : CSV encoding
//   --fail-on-diff   : Exit non-zero when any cell is flagged
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalog-reconciler/internal/comparison"
	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/pkg/utils"
)

// compareFlags holds the compare command's local flags.
var compareFlags struct {
	name       string
	outputDir  string
	tolerance  int64
	unit       string
	strictness string
	sheet      string
	headerRow  int
	delimiter  string
	encoding   string
	failOnDiff bool
}

// compareCmd represents the 'compare' command.
var compareCmd = &cobra.Command{
	Use:   "compare <base> <reference>",
	Short: "Compare a base catalog against a reference catalog",
	Long: `The compare command reconciles one base catalog against one reference
catalog and writes the base back out with every flagged cell highlighted.

Inputs may be .xlsx, .xlsm or .csv files. Flags override the reconcile
settings from the main configuration for this run only.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := compareCmd.Flags()
	f.StringVar(&compareFlags.name, "name", "", "Job code used in output names (default: base file name)")
	f.StringVar(&compareFlags.outputDir, "output-dir", "", "Directory for the workbook and report (default: output_dir)")
	f.Int64Var(&compareFlags.tolerance, "tolerance", 0, "Largest price difference that is not flagged")
	f.StringVar(&compareFlags.unit, "unit", "", "Price unit: whole or cents")
	f.StringVar(&compareFlags.strictness, "strictness", "", "Rule set: standard or paired")
	f.StringVar(&compareFlags.sheet, "sheet", "", "Sheet to read from XLSX inputs (default: first sheet)")
	f.IntVar(&compareFlags.headerRow, "header-row", 0, "1-based header row (default: 1)")
	f.StringVar(&compareFlags.delimiter, "delimiter", "", "CSV delimiter: , ; tab pipe")
	f.StringVar(&compareFlags.encoding, "encoding", "", "CSV encoding: UTF-8, Windows-1252, ISO-8859-1")
	f.BoolVar(&compareFlags.failOnDiff, "fail-on-diff", false, "Exit non-zero when any cell is flagged")
}

// runCompare builds an ad-hoc job from the arguments and runs it.
func runCompare(cmd *cobra.Command, args []string) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	if compareFlags.outputDir != "" {
		mainConfig.OutputDir = compareFlags.outputDir
	}

	logger, closer, err := newLogger(mainConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	job := compareJob(cmd, args[0], args[1])
	if err := job.Validate(); err != nil {
		return err
	}

	result := <-comparison.New(job, mainConfig, logger).RunAsync(cmd.Context())
	if result.Error != nil {
		return result.Error
	}

	printResult(cmd, result)

	if compareFlags.failOnDiff && len(result.Differences) > 0 {
		return fmt.Errorf("%d cell(s) flagged", len(result.Differences))
	}
	return nil
}

// compareJob turns the command line into a job. Only flags the user set
// override the main configuration.
func compareJob(cmd *cobra.Command, base, reference string) *config.JobConfig {
	flags := cmd.Flags()

	job := &config.JobConfig{
		JobCode:       compareFlags.name,
		BaseFile:      base,
		ReferenceFile: reference,
	}
	if job.JobCode == "" {
		job.JobCode = utils.BaseName(base)
	}
	job.JobName = job.JobCode

	rc := &config.ReconcileConfig{}
	overridden := false
	if flags.Changed("tolerance") {
		rc.PriceTolerance = compareFlags.tolerance
		overridden = true
	}
	if flags.Changed("unit") {
		rc.PriceUnit = compareFlags.unit
		overridden = true
	}
	if flags.Changed("strictness") {
		rc.Strictness = compareFlags.strictness
		overridden = true
	}
	if overridden {
		job.Reconcile = rc
	}

	if flags.Changed("sheet") || flags.Changed("header-row") {
		job.Sheet = &config.SheetSettings{Name: compareFlags.sheet, HeaderRow: compareFlags.headerRow}
	}
	if flags.Changed("delimiter") || flags.Changed("encoding") || flags.Changed("header-row") {
		job.CSV = &config.CSVSettings{
			Delimiter: compareFlags.delimiter,
			Encoding:  compareFlags.encoding,
			HeaderRow: compareFlags.headerRow,
		}
	}

	return job
}

// printResult writes a human-readable summary of one comparison.
func printResult(cmd *cobra.Command, result comparison.Result) {
	out := cmd.OutOrStdout()
	s := result.Stats

	fmt.Fprintf(out, "=== %s ===\n", result.JobName)
	fmt.Fprintf(out, "Base:             %s (%d rows)\n", result.BaseFile, s.BaseRows)
	fmt.Fprintf(out, "Reference:        %s (%d rows)\n", result.ReferenceFile, s.ReferenceRows)
	fmt.Fprintf(out, "Matches:          %d exact, %d fallback, %d unmatched\n", s.ExactMatches, s.FallbackMatches, s.NoMatch)
	fmt.Fprintf(out, "Duplicates:       %d base, %d reference\n", s.DuplicateBase, s.DuplicateReference)
	fmt.Fprintf(out, "Skipped rows:     %d\n", s.SkippedRows)
	fmt.Fprintf(out, "Rule violations:  %d\n", s.RuleViolations)
	fmt.Fprintf(out, "Comparisons:      %d\n", s.TotalComparisons)
	fmt.Fprintf(out, "Flagged cells:    %d\n", s.Differences)
	fmt.Fprintf(out, "Output:           %s\n", result.OutputFile)
	if result.ReportFile != "" {
		fmt.Fprintf(out, "Report:           %s\n", result.ReportFile)
	}
	fmt.Fprintf(out, "Time elapsed:     %s\n", result.Duration)
}
