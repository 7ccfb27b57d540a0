package report

import (
	"fmt"
	"io"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// PrintLeaderboard prints the top view and the momentum view of a scan
func PrintLeaderboard(w io.Writer, result *contracts.ScanResult, rule contracts.MomentumRule) {
	if result.Empty() {
		fmt.Fprintln(w, "No data fetched. Try again.")
		return
	}

	fmt.Fprintf(w, "Scanned %d symbols, %d with usable history.\n\n", result.Requested, result.Produced())

	fmt.Fprintf(w, "Top %d by 6m return:\n", len(result.Top))
	for i, rec := range result.Top {
		fmt.Fprintf(w, "%2d. %s\n", i+1, line(rec))
	}

	fmt.Fprintf(w, "\nMomentum candidates (near 52w high, SMA50>SMA200, RSI %g–%g):\n", rule.RSIMin, rule.RSIMax)
	if len(result.Momentum) == 0 {
		fmt.Fprintln(w, "  (none today)")
		return
	}
	for _, rec := range result.Momentum {
		fmt.Fprintf(w, " - %s\n", line(rec))
	}
}

func line(rec contracts.MetricRecord) string {
	return fmt.Sprintf("%-12s  6m: %6.2f%%  BelowHigh: %5.2f%%  RSI: %5.1f",
		rec.Symbol(), rec.Return6MPct(), rec.BelowHighPct(), rec.RSI14())
}
