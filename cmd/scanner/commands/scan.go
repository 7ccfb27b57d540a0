package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum-scanner/internal/report"
	"github.com/wonny/momentum-scanner/internal/scanconfig"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one momentum scan and print the leaderboard",
	Long: `Runs one scan over the universe and prints the top symbols by 6-month
return plus the momentum candidates (near the 52-week high, SMA50 above
SMA200, RSI inside the configured band). The full ranked table is saved
as CSV.

Universe sources:
  config   - the scan config's universe section (default)
  nifty50  - built-in NIFTY 50 list
  nse      - every active EQ symbol in the NSE equity master

Example:
  go run ./cmd/scanner scan
  go run ./cmd/scanner scan --universe nse --workers 8
  go run ./cmd/scanner scan --json > scan.json`,
	RunE: runScan,
}

var (
	scanWorkers  int
	scanTop      int
	scanCSV      string
	scanNoCSV    bool
	scanJSON     bool
	scanUniverse string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "concurrent fetches (default from config)")
	scanCmd.Flags().IntVar(&scanTop, "top", -1, "leaderboard size (default from config)")
	scanCmd.Flags().StringVar(&scanCSV, "csv", "", "CSV output path (default from config)")
	scanCmd.Flags().BoolVar(&scanNoCSV, "no-csv", false, "do not write the CSV file")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the scan result as JSON instead of the leaderboard")
	scanCmd.Flags().StringVarP(&scanUniverse, "universe", "u", universeFromConfig, "universe source: config|nifty50|nse")
}

// applyScanFlags overrides the loaded scan config with command-line flags
func applyScanFlags(base scanconfig.Config) (*scanconfig.Config, error) {
	scfg := base
	if scanWorkers > 0 {
		scfg.Scan.Concurrency = scanWorkers
	}
	if scanTop >= 0 {
		scfg.Report.TopN = scanTop
	}
	if scanCSV != "" {
		scfg.Report.CSVPath = scanCSV
	}
	if scanNoCSV {
		scfg.Report.CSVPath = ""
	}
	if err := scanconfig.Validate(&scfg); err != nil {
		return nil, err
	}
	return &scfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scfg, err := applyScanFlags(*a.scan)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u, err := a.universeFunc(scanUniverse, scfg)(ctx)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"symbols":     u.Count(),
		"workers":     scfg.Scan.Concurrency,
		"config_hash": a.hash,
	}).Info("Starting scan")

	result := a.coordinator(scfg).Scan(ctx, u)
	out := cmd.OutOrStdout()

	if scanJSON {
		return PrintJSON(out, result)
	}

	report.PrintLeaderboard(out, result, scfg.MomentumRule())

	if result.Empty() || scfg.Report.CSVPath == "" {
		return nil
	}
	if err := report.WriteCSVFile(scfg.Report.CSVPath, result.Records); err != nil {
		return fmt.Errorf("save csv: %w", err)
	}
	fmt.Fprintf(out, "\nSaved: %s\n", scfg.Report.CSVPath)

	return nil
}
