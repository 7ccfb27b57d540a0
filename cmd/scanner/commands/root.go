package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "NSE momentum scanner",
	Long: `NSE momentum scanner

Fetches daily history for a universe of NSE equities, computes 6-month
return, distance from the 52-week high, SMA50/SMA200 and RSI14, ranks the
universe and flags momentum candidates.

Usage:
  go run ./cmd/scanner [command]

Examples:
  go run ./cmd/scanner scan
  go run ./cmd/scanner scan --universe nse --workers 8 --json
  go run ./cmd/scanner serve --port 8089
  go run ./cmd/scanner universe --search bank
  go run ./cmd/scanner quote TCS --promoter`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scan config YAML (default: $SCAN_CONFIG, else built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
