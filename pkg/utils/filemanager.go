// =============================================================================
// Catalog Reconciler - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the reconciler:
//   - Directory management
//   - Input path resolution
//   - Input archival (moving compared catalogs away)
//   - Output file naming
//   - Error and summary logs for batch runs
//
// ARCHIVAL STRATEGY:
//   - Input catalogs are moved to input_archive after a successful comparison
//   - Failed jobs leave their inputs in place
//   - Error and summary logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for comparison jobs.
type FileManager struct {
	// InputDir is where relative catalog paths are looked up.
	InputDir string

	// OutputDir is where reports are written.
	OutputDir string

	// InputArchiveDir receives archived input catalogs.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2025/01/15/acura.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess enables ArchiveInputFile.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ArchiveOnSuccess: true,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ResolveInput returns path unchanged when it is absolute or exists as
// given, and otherwise resolves it against InputDir.
func (fm *FileManager) ResolveInput(path string) string {
	if path == "" || filepath.IsAbs(path) || FileExists(path) || fm.InputDir == "" {
		return path
	}
	return filepath.Join(fm.InputDir, path)
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file (the original path when archiving is off).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.archivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string) string {
	fileName := filepath.Base(filePath)
	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}
	return filepath.Join(fm.InputArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name format.
//
// PARAMETERS:
//   - format: The format string. Built-in placeholders:
//       {uuid}      - A random UUID
//       {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//       {date}      - Current date (YYYYMMDD)
//       {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values, e.g. {"job": "acura"} for {job}.
//
// EXAMPLE:
//   format: "{base}_diff_{timestamp}"
//   params: {"base": "acura_2025"}
//   output: "acura_2025_diff_20250115_143022"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	pairs := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", SanitizeFileName(value))
	}

	return strings.NewReplacer(pairs...).Replace(format)
}

// SanitizeFileName replaces path separators and characters that are not
// allowed in Windows file names.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single failed job.
type ErrorLogEntry struct {
	Timestamp     time.Time
	JobCode       string
	BaseFile      string
	ReferenceFile string
	ErrorMessage  string
}

// WriteErrorLog writes error entries to a log file.
//
// RETURNS:
//   - The path to the error log file, or "" when there is nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Catalog Reconciler - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format(time.DateTime), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  Job:            %s\n"+
			"  Base:           %s\n"+
			"  Reference:      %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.Timestamp.Format(time.DateTime),
			entry.JobCode,
			entry.BaseFile,
			entry.ReferenceFile,
			entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a batch run.
type ProcessingSummary struct {
	StartTime        time.Time
	EndTime          time.Time
	TotalJobs        int
	SuccessfulJobs   int
	FailedJobs       int
	TotalDifferences int
	Jobs             []JobSummary
}

// JobSummary describes one finished job.
type JobSummary struct {
	JobCode     string
	OutputFile  string
	ReportFile  string
	Differences int
	Success     bool
	Error       string
	ProcessTime time.Duration
}

// WriteSummaryLog writes a processing summary to a log file.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Catalog Reconciler - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Jobs:         %d\n"+
		"  Successful:         %d\n"+
		"  Failed:             %d\n"+
		"  Total Differences:  %d\n\n",
		summary.StartTime.Format(time.DateTime),
		summary.EndTime.Format(time.DateTime),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalJobs,
		summary.SuccessfulJobs,
		summary.FailedJobs,
		summary.TotalDifferences)

	if len(summary.Jobs) > 0 {
		writer.WriteString("Jobs:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, job := range summary.Jobs {
			fmt.Fprintf(writer, "  Job:          %s\n", job.JobCode)
			if job.Success {
				fmt.Fprintf(writer, "  Output:       %s\n", job.OutputFile)
				if job.ReportFile != "" {
					fmt.Fprintf(writer, "  Report:       %s\n", job.ReportFile)
				}
				fmt.Fprintf(writer, "  Differences:  %d\n", job.Differences)
			} else {
				fmt.Fprintf(writer, "  Error:        %s\n", job.Error)
			}
			fmt.Fprintf(writer, "  Process Time: %s\n\n", job.ProcessTime.String())
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
