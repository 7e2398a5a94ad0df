// =============================================================================
// Catalog Reconciler - Comparison Module
// =============================================================================
//
// This module orchestrates one comparison job, from loading both catalogs to
// writing the highlighted workbook.
//
// COMPARISON PIPELINE:
//   1. Resolve the base and reference paths
//   2. Load both catalogs (XLSX/XLSM through excelize, CSV through csvparser)
//   3. Drop scratch columns (headers containing "temp" by default)
//   4. Reconcile base against reference
//   5. Write the highlighted workbook
//   6. Write the XML findings report (optional)
//   7. Archive the input catalogs (optional)
//
// CONCURRENCY:
//   A Comparison touches only its own job's files, so many may run at once.
//   RunAsync runs the pipeline on its own goroutine.
//
// =============================================================================

package comparison

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ginjaninja78/catalog-reconciler/internal/annotate"
	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/internal/csvparser"
	"github.com/ginjaninja78/catalog-reconciler/internal/logging"
	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
	"github.com/ginjaninja78/catalog-reconciler/internal/report"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
	"github.com/ginjaninja78/catalog-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/catalog-reconciler/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one comparison job.
type Result struct {
	// JobName and JobCode identify the job.
	JobName string
	JobCode string

	// RunID is a random identifier stamped on the report.
	RunID string

	// BaseFile and ReferenceFile are the resolved input paths.
	BaseFile      string
	ReferenceFile string

	// OutputFile is the highlighted workbook. Empty on failure.
	OutputFile string

	// ReportFile is the XML findings report. Empty when disabled or on
	// failure.
	ReportFile string

	// Success indicates whether the job completed.
	Success bool

	// Error contains the error if the job failed.
	Error error

	// Stats holds the engine counters.
	Stats reconcile.Stats

	// Differences lists the flagged cells in "row:col" form, sorted.
	Differences []string

	// Duration is the wall time the job took.
	Duration time.Duration
}

// =============================================================================
// COMPARISON STRUCTURE
// =============================================================================

// Comparison runs a single job.
type Comparison struct {
	job        *config.JobConfig
	mainConfig *config.MainConfig
	files      *utils.FileManager
	logger     *log.Logger
}

// New creates a Comparison for job. A nil mainConfig uses the defaults and
// a nil logger discards output.
func New(job *config.JobConfig, mainConfig *config.MainConfig, logger *log.Logger) *Comparison {
	if mainConfig == nil {
		mainConfig = config.DefaultMainConfig()
	}

	files := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
	files.ArchiveOnSuccess = mainConfig.ArchiveInputs

	code := ""
	if job != nil {
		code = job.JobCode
	}

	return &Comparison{
		job:        job,
		mainConfig: mainConfig,
		files:      files,
		logger:     logging.OrDiscard(logger).With("job", code),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the comparison pipeline.
//
// RETURNS:
//   - A Result describing the outcome. Failures are reported through
//     Result.Error, never by panicking.
func (c *Comparison) Run() Result {
	start := time.Now()
	result := Result{RunID: uuid.New().String()}

	finish := func(err error) Result {
		result.Duration = time.Since(start)
		if err != nil {
			result.Error = err
			c.logger.Error("comparison failed", "err", err)
			return result
		}
		result.Success = true
		return result
	}

	if c.job == nil {
		return finish(fmt.Errorf("no job configured"))
	}
	if err := c.job.Validate(); err != nil {
		return finish(err)
	}

	result.JobName = c.job.JobName
	result.JobCode = c.job.JobCode

	// =========================================================================
	// STEP 1: RESOLVE PATHS
	// =========================================================================

	result.BaseFile = c.files.ResolveInput(c.job.BaseFile)
	result.ReferenceFile = c.files.ResolveInput(c.job.ReferenceFile)

	c.logger.Info("comparing catalogs", "base", result.BaseFile, "reference", result.ReferenceFile)

	// =========================================================================
	// STEP 2: LOAD CATALOGS
	// =========================================================================

	sheet := c.mainConfig.EffectiveSheet(c.job)
	csv := c.mainConfig.EffectiveCSV(c.job)

	base, err := LoadCatalog(result.BaseFile, sheet, csv)
	if err != nil {
		return finish(fmt.Errorf("failed to load base catalog: %w", err))
	}
	ref, err := LoadCatalog(result.ReferenceFile, sheet, csv)
	if err != nil {
		return finish(fmt.Errorf("failed to load reference catalog: %w", err))
	}

	c.logger.Debug("loaded catalogs", "baseRows", len(base.Rows), "referenceRows", len(ref.Rows))

	// =========================================================================
	// STEP 3: DROP SCRATCH COLUMNS
	// =========================================================================

	policy := c.mainConfig.EffectiveReconcile(c.job)

	base, dropped := annotate.StripColumns(base, policy.DropColumnsContaining)
	if len(dropped) > 0 {
		c.logger.Info("dropped base columns", "columns", dropped)
	}
	ref, dropped = annotate.StripColumns(ref, policy.DropColumnsContaining)
	if len(dropped) > 0 {
		c.logger.Info("dropped reference columns", "columns", dropped)
	}

	// =========================================================================
	// STEP 4: RECONCILE
	// =========================================================================

	opts, err := policy.EngineOptions()
	if err != nil {
		return finish(fmt.Errorf("invalid reconcile settings: %w", err))
	}
	opts.Logger = c.logger

	reconciled, err := reconcile.New(opts).Reconcile(base, ref)
	if err != nil {
		return finish(err)
	}

	result.Stats = reconciled.Stats
	result.Differences = reconciled.Differences.Strings()

	// =========================================================================
	// STEP 5: WRITE WORKBOOK
	// =========================================================================

	if err := os.MkdirAll(c.mainConfig.OutputDir, 0o755); err != nil {
		return finish(fmt.Errorf("failed to create output directory: %w", err))
	}

	name := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, map[string]string{
		"base": utils.BaseName(result.BaseFile),
		"job":  c.job.JobCode,
	})

	outputPath := filepath.Join(c.mainConfig.OutputDir, name+".xlsx")
	if err := report.WriteWorkbook(outputPath, reconciled, report.DefaultWorkbookOptions()); err != nil {
		return finish(fmt.Errorf("failed to write output: %w", err))
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote workbook", "path", outputPath, "differences", reconciled.Stats.Differences)

	// =========================================================================
	// STEP 6: WRITE XML REPORT
	// =========================================================================

	if c.mainConfig.WriteXMLReport == nil || *c.mainConfig.WriteXMLReport {
		reportPath := filepath.Join(c.mainConfig.OutputDir, name+".xml")
		meta := report.Meta{
			RunID:       result.RunID,
			Job:         c.job.JobCode,
			Base:        filepath.Base(result.BaseFile),
			Reference:   filepath.Base(result.ReferenceFile),
			GeneratedAt: time.Now(),
		}
		if err := report.WriteXML(reportPath, meta, reconciled); err != nil {
			return finish(fmt.Errorf("failed to write report: %w", err))
		}
		result.ReportFile = reportPath
	}

	// =========================================================================
	// STEP 7: ARCHIVE INPUTS
	// =========================================================================

	if c.files.ArchiveOnSuccess {
		for _, path := range []string{result.BaseFile, result.ReferenceFile} {
			archived, err := c.files.ArchiveInputFile(path)
			if err != nil {
				c.logger.Warn("failed to archive input", "path", path, "err", err)
				continue
			}
			c.logger.Debug("archived input", "path", archived)
		}
	}

	return finish(nil)
}

// RunAsync runs the pipeline on its own goroutine. The returned channel
// delivers exactly one Result and is then closed. If ctx ends first, the
// Result carries ctx.Err(); any files the abandoned run writes are left in
// place.
func (c *Comparison) RunAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		if err := ctx.Err(); err != nil {
			out <- c.canceled(err)
			return
		}

		done := make(chan Result, 1)
		go func() { done <- c.Run() }()

		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			out <- c.canceled(ctx.Err())
		}
	}()

	return out
}

func (c *Comparison) canceled(err error) Result {
	res := Result{Error: fmt.Errorf("comparison canceled: %w", err)}
	if c.job != nil {
		res.JobName = c.job.JobName
		res.JobCode = c.job.JobCode
	}
	return res
}

// =============================================================================
// CATALOG LOADING
// =============================================================================

// LoadCatalog reads a catalog, choosing the parser from the file extension.
func LoadCatalog(path string, sheet config.SheetSettings, csv config.CSVSettings) (*types.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseWithOptions(path, xlsxparser.Options{
			Sheet:     sheet.Name,
			HeaderRow: sheet.HeaderRow,
		})
	case ".csv", ".txt":
		return csvparser.Parse(path, csv)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}
