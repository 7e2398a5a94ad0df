// =============================================================================
// Catalog Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── compareCmd  (reconciler compare)
//   ├── processCmd  (reconciler process)
//   ├── validateCmd (reconciler validate)
//   ├── priceCmd    (reconciler price)
//   └── versionCmd  (reconciler version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level, --log-file)
//   2. Loading .env files and binding RECONCILER_* environment variables
//   3. Building the shared logger
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// defaultConfigFile is used when --config is not given. Its absence is not
// an error.
const defaultConfigFile = "config.yaml"

// envPrefix namespaces the environment variables viper reads.
const envPrefix = "RECONCILER"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Catalog Reconciler - Compare vehicle pricing catalogs cell by cell",
	Long: `Catalog Reconciler compares a base vehicle-pricing catalog against a
reference catalog and highlights every cell that differs or breaks a pricing
rule.

Key Features:
  - Year-aware row matching with a version-only fallback
  - Price normalization across currency and separator formats
  - Intra-row pricing rules (mandatory price, price ordering)
  - Highlighted XLSX output plus an XML findings report
  - Concurrent batch processing of job files

Example Usage:
  reconciler compare base.xlsx reference.xlsx   # Compare two catalogs
  reconciler process                            # Run every job in jobs_dir
  reconciler validate                           # Validate configuration files
  reconciler price '$85,000' 85.000,00          # Show how prices normalize`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file (overrides config)")

	for key, flag := range map[string]string{
		"verbose":   "verbose",
		"log_level": "log-level",
		"log_file":  "log-file",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig loads .env files and wires environment variables into viper.
func initConfig() {
	for _, envFile := range []string{".env", ".env.local"} {
		// Missing files are fine; existing variables are never overwritten.
		_ = godotenv.Load(envFile)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the main configuration and applies flag and environment
// overrides. A missing default config file yields the built-in defaults.
func loadConfig() (*config.MainConfig, error) {
	path := cfgFile
	if env := viper.GetString("config"); path == defaultConfigFile && env != "" {
		path = env
	}

	mainConfig, err := config.LoadMainConfig(path)
	switch {
	case err == nil:
	case path == defaultConfigFile && errors.Is(err, fs.ErrNotExist):
		mainConfig = config.DefaultMainConfig()
	default:
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	if level := viper.GetString("log_level"); level != "" {
		mainConfig.LogLevel = strings.ToLower(level)
	}
	if verbose || viper.GetBool("verbose") {
		mainConfig.LogLevel = "debug"
	}
	if _, err := config.ParseLogLevel(mainConfig.LogLevel); err != nil {
		return nil, err
	}
	if file := viper.GetString("log_file"); file != "" {
		mainConfig.LogFile = file
	}

	return mainConfig, nil
}

// newLogger builds the logger every command shares.
func newLogger(mainConfig *config.MainConfig) (*log.Logger, io.Closer, error) {
	return logging.New(logging.Config{
		Level:  mainConfig.LogLevel,
		File:   mainConfig.LogFile,
		Output: os.Stderr,
		Prefix: "reconciler",
	})
}
