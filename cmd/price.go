// =============================================================================
// Catalog Reconciler - Price Command
// =============================================================================
//
// Shows how raw price values normalize, for checking a catalog's formats by
// hand before a run.
//
// COMMAND USAGE:
//   reconciler price [flags] <value>...
//
// OUTPUT:
//   RAW            NORMALIZED  VALID
//   $85,000        85000       yes
//   85.000,50      85001       yes
//   N/A                        no
//
// =============================================================================

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalog-reconciler/internal/normalize"
)

var priceFlags struct {
	unit          string
	allowNegative bool
}

// priceCmd represents the 'price' command.
var priceCmd = &cobra.Command{
	Use:   "price <value>...",
	Short: "Show how price values normalize",
	Long: `The price command runs each argument through the price normalizer used by
the comparison and prints the normalized integer and whether the value counts
as a valid price.

Unset flags fall back to the reconcile settings of the main configuration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceFlags.unit, "unit", "", "Price unit: whole or cents")
	priceCmd.Flags().BoolVar(&priceFlags.allowNegative, "allow-negative", false, "Keep the sign of negative amounts")
}

func runPrice(cmd *cobra.Command, args []string) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}

	policy := mainConfig.Reconcile
	if cmd.Flags().Changed("unit") {
		policy.PriceUnit = priceFlags.unit
	}
	if cmd.Flags().Changed("allow-negative") {
		policy.AllowNegativePrices = priceFlags.allowNegative
	}

	unit, err := normalize.ParseUnit(policy.PriceUnit)
	if err != nil {
		return err
	}
	prices := &normalize.PriceNormalizer{Unit: unit, AllowNegative: policy.AllowNegativePrices}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RAW\tNORMALIZED\tVALID")
	for _, raw := range args {
		valid := "no"
		if prices.IsValid(raw) {
			valid = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", raw, prices.Normalize(raw), valid)
	}
	return w.Flush()
}
