// =============================================================================
// Catalog Reconciler - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs every job file in the
// jobs directory.
//
// COMMAND USAGE:
//   reconciler process [flags]
//
// FLAGS:
//   --job      : Run only the job with this code (repeatable)
//   --dry-run  : List the jobs that would run without running them
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and all job files
//   2. Run the jobs concurrently, at most max_concurrency at a time
//   3. Collect results as they finish
//   4. Write an error log (if any job failed) and a summary log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalog-reconciler/internal/comparison"
	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun lists jobs without running them.
var dryRun bool

// onlyJobs filters processing to specific job codes.
var onlyJobs []string

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run every comparison job in the jobs directory",
	Long: `The process command loads every job file (*.yaml, *.yml) from jobs_dir and
runs the comparisons concurrently, at most max_concurrency at a time.

Each job is independent; a failing job does not stop the others.

On success:
  - The highlighted workbook and XML report are placed in output_dir
  - The inputs are moved to input_archive_dir when archive_inputs is set

On error:
  - An error log is created in output_dir
  - The inputs stay where they are`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"List the jobs that would run without running them",
	)

	processCmd.Flags().StringSliceVar(
		&onlyJobs,
		"job",
		nil,
		"Run only the job with this code (repeatable)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess loads the jobs and runs them.
func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(mainConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	jobs, err := config.LoadJobConfigs(mainConfig.JobsDir)
	if err != nil {
		return fmt.Errorf("failed to load job configs: %w", err)
	}
	jobs = filterJobs(jobs, onlyJobs)

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs to run.")
		return nil
	}

	if dryRun {
		for _, job := range jobs {
			fmt.Fprintf(out, "  %s: %s vs %s\n", job.JobCode, job.BaseFile, job.ReferenceFile)
		}
		return nil
	}

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: RUN JOBS CONCURRENTLY
	// =========================================================================

	summary := utils.ProcessingSummary{StartTime: time.Now(), TotalJobs: len(jobs)}
	var failures []utils.ErrorLogEntry

	for result := range runJobs(cmd.Context(), jobs, mainConfig, logger) {
		// =====================================================================
		// STEP 3: COLLECT RESULTS
		// =====================================================================

		entry := utils.JobSummary{
			JobCode:     result.JobCode,
			OutputFile:  result.OutputFile,
			ReportFile:  result.ReportFile,
			Differences: len(result.Differences),
			Success:     result.Success,
			ProcessTime: result.Duration,
		}

		if result.Success {
			summary.SuccessfulJobs++
			summary.TotalDifferences += len(result.Differences)
			fmt.Fprintf(out, "  ✓ %s -> %s (%d flagged)\n", result.JobCode, result.OutputFile, len(result.Differences))
		} else {
			summary.FailedJobs++
			entry.Error = result.Error.Error()
			failures = append(failures, utils.ErrorLogEntry{
				Timestamp:     time.Now(),
				JobCode:       result.JobCode,
				BaseFile:      result.BaseFile,
				ReferenceFile: result.ReferenceFile,
				ErrorMessage:  entry.Error,
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", result.JobCode, result.Error)
		}
		summary.Jobs = append(summary.Jobs, entry)
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: WRITE LOGS
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total jobs:      %d\n", summary.TotalJobs)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulJobs)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedJobs)
	fmt.Fprintf(out, "Flagged cells:   %d\n", summary.TotalDifferences)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if path, err := utils.WriteErrorLog(failures, mainConfig.OutputDir); err != nil {
		logger.Warn("failed to write error log", "err", err)
	} else if path != "" {
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
	}
	if _, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir); err != nil {
		logger.Warn("failed to write summary log", "err", err)
	}

	if summary.FailedJobs > 0 {
		return fmt.Errorf("%d of %d job(s) failed", summary.FailedJobs, summary.TotalJobs)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// runJobs runs every job with at most mainConfig.MaxConcurrency in flight.
// The returned channel yields one result per job and is closed afterwards.
func runJobs(ctx context.Context, jobs []*config.JobConfig, mainConfig *config.MainConfig, logger *log.Logger) <-chan comparison.Result {
	limit := mainConfig.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}

	results := make(chan comparison.Result, len(jobs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for _, job := range jobs {
		wg.Add(1)
		go func(job *config.JobConfig) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- comparison.Result{
					JobName: job.JobName,
					JobCode: job.JobCode,
					Error:   fmt.Errorf("comparison canceled: %w", ctx.Err()),
				}
				return
			}

			results <- <-comparison.New(job, mainConfig, logger).RunAsync(ctx)
		}(job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// filterJobs keeps the jobs whose code is listed. An empty list keeps all.
func filterJobs(jobs []*config.JobConfig, codes []string) []*config.JobConfig {
	if len(codes) == 0 {
		return jobs
	}
	var kept []*config.JobConfig
	for _, job := range jobs {
		if slices.Contains(codes, job.JobCode) {
			kept = append(kept, job)
		}
	}
	return kept
}
