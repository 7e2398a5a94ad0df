// =============================================================================
// Catalog Reconciler - Validate Command
// =============================================================================
//
// Without arguments, validates the main configuration and every job file.
// With catalog arguments, checks each catalog's rows against the pricing
// rules on their own, without a reference.
//
// COMMAND USAGE:
//   reconciler validate
//   reconciler validate [flags] <catalog>...
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalog-reconciler/internal/annotate"
	"github.com/ginjaninja78/catalog-reconciler/internal/comparison"
	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/internal/validation"
)

var validateStrictness string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [catalog...]",
	Short: "Validate configuration files or catalogs",
	Long: `Without arguments, validate loads the main configuration and every job file
and reports the first problem found.

With catalog arguments, every price row of each catalog is checked against
the pricing rules (mandatory price, price ordering, and in paired strictness
a well-formed second price). No reference catalog is needed.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateStrictness, "strictness", "", "Rule set: standard or paired (default: from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		jobs, err := config.LoadJobConfigs(mainConfig.JobsDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Configuration OK (%d job(s) in %s)\n", len(jobs), mainConfig.JobsDir)
		return nil
	}

	policy := mainConfig.Reconcile
	if validateStrictness != "" {
		policy.Strictness = validateStrictness
	}
	opts, err := policy.EngineOptions()
	if err != nil {
		return err
	}
	validator := validation.NewValidatorWithOptions(opts.Prices, validation.Options{
		Strictness:    opts.Strictness,
		PriceRowTypes: opts.PriceRowTypes,
	})

	failed := 0
	for _, path := range args {
		cat, err := comparison.LoadCatalog(path, mainConfig.Sheet, mainConfig.CSV)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		cat, _ = annotate.StripColumns(cat, policy.DropColumnsContaining)

		result := validator.ValidateCatalog(annotate.YearContext(cat))
		fmt.Fprintf(out, "=== %s (%d price rows) ===\n", path, result.RowsValidated)
		fmt.Fprintln(out, validation.FormatViolations(result.Violations))
		if !result.IsValid {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d catalog(s) with violations", failed)
	}
	return nil
}
