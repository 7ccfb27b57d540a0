package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/momentum-scanner/internal/api"
	"github.com/wonny/momentum-scanner/internal/api/handlers"
	"github.com/wonny/momentum-scanner/internal/nse"
	"github.com/wonny/momentum-scanner/internal/scan"
	"github.com/wonny/momentum-scanner/internal/scheduler"
	"github.com/wonny/momentum-scanner/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the scan scheduler",
	Long: `Starts the REST API and the cron scheduler. The scheduler runs the
scan on SCAN_SCHEDULE (default weekdays 15:45 exchange time) and refreshes
the NSE symbol master before the open. The latest scan is kept in memory.

Endpoints:
  GET  /health                              - Health check
  GET  /api/scan/latest                     - Latest scan with all records
  GET  /api/scan/top?n=                     - Top by 6-month return
  GET  /api/scan/momentum                   - Momentum candidates
  GET  /api/scan/symbols/{symbol}           - One symbol from the latest scan
  POST /api/scan/run                        - Start a scan (409 if running)
  GET  /api/quote/{symbol}                  - Live NSE last price
  GET  /api/quote/{symbol}/promoter         - Promoter holding trend
  GET  /api/universe/default                - Built-in NIFTY 50 list
  GET  /api/universe/search?q=              - Search the symbol master
  GET  /api/scheduler/jobs                  - Job statistics
  GET  /api/scheduler/jobs/{name}/history   - Job run history
  POST /api/scheduler/jobs/{name}/run       - Run a job now

Example:
  go run ./cmd/scanner serve
  go run ./cmd/scanner serve --port 8080 --scan-on-start`,
	RunE: runServe,
}

var (
	servePort        string
	serveScanOnStart bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (default $PORT)")
	serveCmd.Flags().BoolVar(&serveScanOnStart, "scan-on-start", false, "run one scan immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := a.masterLoader()
	runner := scan.NewRunner(a.coordinator(a.scan), scan.NewStore(), a.universeFunc(universeFromConfig, a.scan))

	sched := scheduler.New(scheduler.Options{
		RetryDelay: time.Minute,
		Location:   a.cfg.Location(),
	}, a.log)
	if err := sched.AddJob(jobs.NewScanJob(runner, a.cfg.ScanSchedule, a.log)); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}
	if err := sched.AddJob(jobs.NewUniverseRefreshJob(loader, a.log)); err != nil {
		return fmt.Errorf("register universe job: %w", err)
	}

	router := api.NewRouter(api.Handlers{
		Scan:      handlers.NewScanHandler(ctx, runner, a.log),
		Quote:     handlers.NewQuoteHandler(nse.NewFromConfig(a.cfg, a.rdb, a.log), a.log),
		Universe:  handlers.NewUniverseHandler(loader, a.log),
		Scheduler: handlers.NewSchedulerHandler(sched),
	}, a.log)
	server := api.New(a.cfg, a.log, router)

	sched.Start()
	defer sched.Stop()

	if serveScanOnStart {
		go startupScan(ctx, runner, a)
	}

	out := cmd.OutOrStdout()
	PrintHeader(out, "Momentum Scanner API", [][2]string{
		{"Address", "http://localhost:" + a.cfg.Port},
		{"Schedule", a.cfg.ScanSchedule + " (" + a.cfg.Location().String() + ")"},
		{"Universe", a.scan.Universe.Source},
		{"Config", a.hash[:12]},
	})
	PrintInfo(out, "Press Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}

func startupScan(ctx context.Context, runner *scan.Runner, a *app) {
	result, err := runner.Run(ctx)
	if err != nil {
		a.log.WithError(err).Error("Startup scan failed")
		return
	}
	a.log.WithFields(map[string]interface{}{
		"scan_id":  result.ID,
		"produced": result.Produced(),
	}).Info("Startup scan completed")
}
