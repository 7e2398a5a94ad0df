// =============================================================================
// Catalog Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and per-job
// configurations.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings and the default
//      reconciliation policy
//   2. Job Configs (jobs/*.yaml): One base/reference pair each, optionally
//      overriding the reconciliation policy
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
	"github.com/ginjaninja78/catalog-reconciler/internal/reconcile"
	"github.com/ginjaninja78/catalog-reconciler/internal/validation"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is where catalog files are read from when job paths are
	// relative. Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is where highlighted workbooks and reports are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where input catalogs are moved after a successful
	// comparison (when ArchiveInputs is set). Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// JobsDir is the directory containing job configurations.
	// Default: "./jobs"
	JobsDir string `yaml:"jobs_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file. Empty logs to stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the base name of output files (without
	// extension). Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {job}       - Job code
	//   {base}      - Base catalog file name without extension
	// Default: "{base}_diff_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// WriteXMLReport also writes the findings as an XML report.
	// Default: true
	WriteXMLReport *bool `yaml:"write_xml_report"`

	// ArchiveInputs moves both input catalogs to InputArchiveDir after a
	// successful comparison. Default: false
	ArchiveInputs bool `yaml:"archive_inputs"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of jobs processed concurrently.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// =========================================================================
	// RECONCILIATION POLICY
	// =========================================================================

	// Reconcile is the default policy for every job.
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Sheet is the default sheet selection for XLSX inputs.
	Sheet SheetSettings `yaml:"sheet"`

	// CSV is the default parsing setup for CSV inputs.
	CSV CSVSettings `yaml:"csv"`
}

// =============================================================================
// RECONCILIATION POLICY STRUCTURE
// =============================================================================

// ReconcileConfig holds the knobs of the reconciliation policy.
type ReconcileConfig struct {
	// PriceUnit is "whole" (default) or "cents".
	PriceUnit string `yaml:"price_unit"`

	// PriceTolerance is the largest ignored price difference, in PriceUnit.
	// Default: 0 (exact match)
	PriceTolerance int64 `yaml:"price_tolerance"`

	// AllowNegativePrices keeps the sign of negative amounts when
	// normalizing. They still never count as valid prices. Default: false
	AllowNegativePrices bool `yaml:"allow_negative_prices"`

	// Strictness is "standard" (default) or "paired".
	Strictness string `yaml:"strictness"`

	// PriceRowTypes lists the type tags that carry prices. Default: [4]
	PriceRowTypes []int `yaml:"price_row_types"`

	// DropColumnsContaining removes columns whose header contains any of
	// these substrings (case-insensitive). Default: ["temp"]
	DropColumnsContaining []string `yaml:"drop_columns_containing"`
}

// SheetSettings selects the data inside an XLSX workbook.
type SheetSettings struct {
	// Name is the sheet to read. Empty reads the first sheet.
	Name string `yaml:"name"`

	// HeaderRow is the 1-based row holding column labels. Default: 1
	HeaderRow int `yaml:"header_row"`
}

// CSVSettings contains settings for parsing CSV catalogs.
type CSVSettings struct {
	// Delimiter is the field separator: ",", ";", "|", "tab". Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is "UTF-8" (default), "Windows-1252" or "ISO-8859-1".
	Encoding string `yaml:"encoding"`

	// HeaderRow is the 1-based row holding column labels. Default: 1
	HeaderRow int `yaml:"header_row"`
}

// =============================================================================
// JOB CONFIGURATION STRUCTURE
// =============================================================================

// JobConfig describes one comparison.
type JobConfig struct {
	// JobName is the human-readable name used in logs and reports.
	JobName string `yaml:"job_name"`

	// JobCode is a short code for output file names. Defaults to the job
	// file name without extension.
	JobCode string `yaml:"job_code"`

	// BaseFile is the catalog under review (.xlsx, .xlsm or .csv).
	BaseFile string `yaml:"base_file"`

	// ReferenceFile is the catalog the base is checked against.
	ReferenceFile string `yaml:"reference_file"`

	// Reconcile overrides the main policy field by field when set.
	Reconcile *ReconcileConfig `yaml:"reconcile,omitempty"`

	// Sheet overrides the main sheet settings when set.
	Sheet *SheetSettings `yaml:"sheet,omitempty"`

	// CSV overrides the main CSV settings when set.
	CSV *CSVSettings `yaml:"csv,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns a configuration with every default applied.
// It is used when no config file exists.
func DefaultMainConfig() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.JobsDir == "" {
		config.JobsDir = "./jobs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{base}_diff_{timestamp}"
	}
	if config.WriteXMLReport == nil {
		enabled := true
		config.WriteXMLReport = &enabled
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	applyReconcileDefaults(&config.Reconcile)
	applySheetDefaults(&config.Sheet)
	applyCSVDefaults(&config.CSV)
}

func applyReconcileDefaults(rc *ReconcileConfig) {
	if rc.PriceUnit == "" {
		rc.PriceUnit = string(normalize.UnitWhole)
	}
	if rc.Strictness == "" {
		rc.Strictness = string(validation.StrictnessStandard)
	}
	if rc.PriceRowTypes == nil {
		rc.PriceRowTypes = []int{4}
	}
	if rc.DropColumnsContaining == nil {
		rc.DropColumnsContaining = []string{"temp"}
	}
}

func applySheetDefaults(s *SheetSettings) {
	if s.HeaderRow <= 0 {
		s.HeaderRow = 1
	}
}

func applyCSVDefaults(s *CSVSettings) {
	if s.Delimiter == "" {
		s.Delimiter = ","
	}
	if s.Encoding == "" {
		s.Encoding = "UTF-8"
	}
	if s.HeaderRow <= 0 {
		s.HeaderRow = 1
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if _, err := ParseLogLevel(config.LogLevel); err != nil {
		return err
	}
	return ValidateReconcile(&config.Reconcile)
}

// ValidateReconcile checks the enumerated and numeric policy fields.
func ValidateReconcile(rc *ReconcileConfig) error {
	if _, err := normalize.ParseUnit(rc.PriceUnit); err != nil {
		return err
	}
	if _, err := validation.ParseStrictness(rc.Strictness); err != nil {
		return err
	}
	if rc.PriceTolerance < 0 {
		return fmt.Errorf("price_tolerance must not be negative (got %d)", rc.PriceTolerance)
	}
	return nil
}

// ParseLogLevel validates a log level name.
func ParseLogLevel(level string) (string, error) {
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	default:
		return "", fmt.Errorf("unknown log level %q", level)
	}
}

// =============================================================================
// JOB LOADING
// =============================================================================

// LoadJobConfigs loads all job configurations from a directory.
//
// RETURNS:
//   - Jobs sorted by job code.
//   - An error if the directory cannot be read or any file cannot be parsed.
func LoadJobConfigs(jobsDir string) ([]*JobConfig, error) {
	files, err := filepath.Glob(filepath.Join(jobsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(jobsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}
	files = append(files, ymlFiles...)

	jobs := make([]*JobConfig, 0, len(files))
	seen := make(map[string]string)

	for _, file := range files {
		job, err := LoadJobConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		if other, dup := seen[job.JobCode]; dup {
			return nil, fmt.Errorf("job code %q used by both %s and %s", job.JobCode, other, file)
		}
		seen[job.JobCode] = file
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobCode < jobs[j].JobCode })
	return jobs, nil
}

// LoadJobConfig loads a single job configuration file.
func LoadJobConfig(filePath string) (*JobConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var job JobConfig
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if job.JobCode == "" {
		base := filepath.Base(filePath)
		job.JobCode = base[:len(base)-len(filepath.Ext(base))]
	}
	if job.JobName == "" {
		job.JobName = job.JobCode
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks that the job names both catalogs.
func (j *JobConfig) Validate() error {
	if j.BaseFile == "" {
		return fmt.Errorf("job %q: base_file is required", j.JobCode)
	}
	if j.ReferenceFile == "" {
		return fmt.Errorf("job %q: reference_file is required", j.JobCode)
	}
	if j.Reconcile != nil {
		if err := ValidateReconcile(j.Reconcile); err != nil {
			return fmt.Errorf("job %q: %w", j.JobCode, err)
		}
	}
	return nil
}

// =============================================================================
// EFFECTIVE SETTINGS
// =============================================================================

// EffectiveReconcile merges a job's overrides onto the main policy.
// Zero-valued override fields keep the main value, except booleans, which a
// job can only switch on.
func (m *MainConfig) EffectiveReconcile(job *JobConfig) ReconcileConfig {
	rc := m.Reconcile
	if job == nil || job.Reconcile == nil {
		return rc
	}

	o := job.Reconcile
	if o.PriceUnit != "" {
		rc.PriceUnit = o.PriceUnit
	}
	if o.PriceTolerance != 0 {
		rc.PriceTolerance = o.PriceTolerance
	}
	if o.AllowNegativePrices {
		rc.AllowNegativePrices = true
	}
	if o.Strictness != "" {
		rc.Strictness = o.Strictness
	}
	if o.PriceRowTypes != nil {
		rc.PriceRowTypes = o.PriceRowTypes
	}
	if o.DropColumnsContaining != nil {
		rc.DropColumnsContaining = o.DropColumnsContaining
	}
	return rc
}

// EffectiveSheet returns the job's sheet settings or the main ones.
func (m *MainConfig) EffectiveSheet(job *JobConfig) SheetSettings {
	if job != nil && job.Sheet != nil {
		s := *job.Sheet
		applySheetDefaults(&s)
		return s
	}
	return m.Sheet
}

// EffectiveCSV returns the job's CSV settings or the main ones.
func (m *MainConfig) EffectiveCSV(job *JobConfig) CSVSettings {
	if job != nil && job.CSV != nil {
		s := *job.CSV
		applyCSVDefaults(&s)
		return s
	}
	return m.CSV
}

// EngineOptions turns a policy into engine options. The logger is attached
// by the caller.
func (rc ReconcileConfig) EngineOptions() (reconcile.Options, error) {
	unit, err := normalize.ParseUnit(rc.PriceUnit)
	if err != nil {
		return reconcile.Options{}, err
	}
	strictness, err := validation.ParseStrictness(rc.Strictness)
	if err != nil {
		return reconcile.Options{}, err
	}

	return reconcile.Options{
		Prices: &normalize.PriceNormalizer{
			Unit:          unit,
			AllowNegative: rc.AllowNegativePrices,
		},
		Tolerance:     rc.PriceTolerance,
		Strictness:    strictness,
		PriceRowTypes: rc.PriceRowTypes,
	}, nil
}
