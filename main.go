// =============================================================================
// Catalog Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   reconciler compare <base> <reference> - Compare two catalogs
//   reconciler process                    - Run every job in the jobs directory
//   reconciler validate [catalog...]      - Validate configuration or catalogs
//   reconciler price <value...>           - Show how price values normalize
//   reconciler version                    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Reconciliation engine and its loaders and writers
//   - pkg/       : Shared file utilities
//   - jobs/      : Per-job YAML configurations
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/catalog-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
