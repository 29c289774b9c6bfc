// Command bakehouse runs the bakery back-office API and offers offline
// conversion and scaling tools.
package main

import (
	"fmt"
	"os"

	"bakehouse/internal/config"
	"bakehouse/internal/logger"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bakehouse",
	Short: "Bakery unit conversion, recipe costing and order production",
	Long: `bakehouse keeps a small bakery's ingredients, recipes, products and
orders. It converts between kitchen units, scales recipes by dough mass,
values stock at weighted-average cost and plans production from open
orders and pre-made dough balls.

Run "bakehouse serve" to start the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		mode := cfg.Logging.Mode
		if verbose {
			mode = "development"
		}
		log, err = logger.New(mode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/bakehouse.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, convertCmd, scaleCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
